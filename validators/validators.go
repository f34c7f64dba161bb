//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of hdx-scraper-gcf.
//
// hdx-scraper-gcf is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// hdx-scraper-gcf is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with hdx-scraper-gcf. If not, see https://www.gnu.org/licenses/.

// validators.go - best-effort table checks run before a table is published
package validators

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

var (
	// ErrTooFewRecords is returned when a table has fewer rows than required.
	ErrTooFewRecords = errors.New("too few records")
	// ErrMissingHeader is returned when a required column is not a table header.
	ErrMissingHeader = errors.New("missing required header")
)

// FieldDataType is the expected shape of a rendered cell.
type FieldDataType string

const (
	FieldTypeString FieldDataType = "string"
	FieldTypeInt    FieldDataType = "int"
	FieldTypeFloat  FieldDataType = "float"
	FieldTypeDate   FieldDataType = "date"
	FieldTypeURL    FieldDataType = "url"
	FieldTypeAny    FieldDataType = "any"
)

// FieldValidator describes the rules for one column. Empty cells are not
// checked; use TableValidator.MaxNullRate for those.
type FieldValidator struct {
	DataType      FieldDataType
	Pattern       *regexp.Regexp
	AllowedValues []string
}

// TableValidator checks a rendered table before it is written. Record count
// and header checks fail the table; field checks only produce warnings.
type TableValidator struct {
	MinRecords      int
	RequiredFields  []string
	MaxNullRate     float64
	FieldValidators map[string]FieldValidator
	// MaxWarnings caps the warnings kept per field. Zero means 10.
	MaxWarnings int
}

// Report is the outcome of a validation run.
type Report struct {
	Records  int
	NullRate map[string]float64
	Warnings []string
}

// Validate checks recs against the table headers and rules.
func (v *TableValidator) Validate(ctx context.Context, headers []string, recs []core.Record) (*Report, error) {
	log := klog.FromContext(ctx)
	report := &Report{Records: len(recs), NullRate: make(map[string]float64, len(headers))}

	if len(recs) < v.MinRecords {
		return report, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewRecords, len(recs), v.MinRecords)
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, field := range v.RequiredFields {
		if !present[field] {
			return report, fmt.Errorf("%w: %s", ErrMissingHeader, field)
		}
	}

	if len(recs) == 0 {
		return report, nil
	}

	for _, h := range headers {
		nulls := 0
		for _, r := range recs {
			if r.Cell(h) == "" {
				nulls++
			}
		}
		rate := float64(nulls) / float64(len(recs))
		report.NullRate[h] = rate
		if v.MaxNullRate > 0 && rate > v.MaxNullRate {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("field %s has null rate %.2f, exceeds maximum %.2f", h, rate, v.MaxNullRate))
		}
	}

	limit := v.MaxWarnings
	if limit == 0 {
		limit = 10
	}
	for _, field := range headers {
		fv, ok := v.FieldValidators[field]
		if !ok {
			continue
		}
		n := 0
		for i, r := range recs {
			cell := r.Cell(field)
			if cell == "" {
				continue
			}
			if err := fv.check(cell); err != nil {
				n++
				if n <= limit {
					report.Warnings = append(report.Warnings, fmt.Sprintf("record %d field %s: %v", i, field, err))
				}
			}
		}
		if n > limit {
			report.Warnings = append(report.Warnings, fmt.Sprintf("field %s: %d more invalid values", field, n-limit))
		}
	}

	for _, w := range report.Warnings {
		log.V(1).Info("validation warning", "warning", w)
	}
	return report, nil
}

func (fv FieldValidator) check(cell string) error {
	if err := validateType(cell, fv.DataType); err != nil {
		return err
	}
	if fv.Pattern != nil && !fv.Pattern.MatchString(cell) {
		return fmt.Errorf("value %q does not match pattern %s", cell, fv.Pattern)
	}
	if len(fv.AllowedValues) > 0 {
		for _, allowed := range fv.AllowedValues {
			if cell == allowed {
				return nil
			}
		}
		return fmt.Errorf("value %q not in allowed values", cell)
	}
	return nil
}

func validateType(cell string, dataType FieldDataType) error {
	switch dataType {
	case FieldTypeInt:
		if _, err := strconv.Atoi(cell); err != nil {
			return fmt.Errorf("value %q is not an int", cell)
		}
	case FieldTypeFloat:
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return fmt.Errorf("value %q is not a number", cell)
		}
	case FieldTypeDate:
		if _, err := records.ParseDisplayDate(cell); err != nil {
			return fmt.Errorf("value %q is not a date", cell)
		}
	case FieldTypeURL:
		u, err := url.Parse(cell)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("value %q is not a URL", cell)
		}
	}
	return nil
}
