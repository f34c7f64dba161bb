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

package validators

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

func TestTableValidator_RecordCount(t *testing.T) {
	v := &TableValidator{MinRecords: 1}
	_, err := v.Validate(context.Background(), []string{"a"}, nil)
	assert.ErrorIs(t, err, ErrTooFewRecords)

	report, err := v.Validate(context.Background(), []string{"a"}, []core.Record{{"a": "x"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Records)
}

func TestTableValidator_RequiredHeaders(t *testing.T) {
	v := &TableValidator{RequiredFields: []string{"ISO3", "# FA"}}
	_, err := v.Validate(context.Background(), []string{"ISO3"}, []core.Record{{"ISO3": "KEN"}})
	assert.ErrorIs(t, err, ErrMissingHeader)
	assert.Contains(t, err.Error(), "# FA")
}

func TestTableValidator_FieldWarnings(t *testing.T) {
	v := &TableValidator{
		MaxNullRate: 0.5,
		FieldValidators: map[string]FieldValidator{
			"ISO3":          {Pattern: regexp.MustCompile(`^[A-Z]{3}$`)},
			"# FA":          {DataType: FieldTypeInt},
			"FA Financing":  {DataType: FieldTypeFloat},
			"Approval Date": {DataType: FieldTypeDate},
			"Project URL":   {DataType: FieldTypeURL},
			"DAE":           {AllowedValues: []string{"TRUE", "FALSE"}},
		},
	}
	headers := []string{"ISO3", "# FA", "FA Financing", "Approval Date", "Project URL", "DAE"}
	recs := []core.Record{
		{"ISO3": "KEN", "# FA": 1, "FA Financing": 100.5, "Approval Date": "March 1, 2019", "Project URL": "https://www.greenclimate.fund/project/fp099", "DAE": "TRUE"},
		{"ISO3": "ke", "# FA": "two", "FA Financing": "lots", "Approval Date": "2019-03-01", "Project URL": "fp099", "DAE": "yes"},
		{"ISO3": "UGA"},
	}

	report, err := v.Validate(context.Background(), headers, recs)
	require.NoError(t, err, "field problems are warnings")

	assert.Len(t, report.Warnings, 6)
	assert.InDelta(t, 1.0/3, report.NullRate["DAE"], 1e-9)
	assert.Equal(t, 0.0, report.NullRate["ISO3"])
}

func TestTableValidator_NullRate(t *testing.T) {
	v := &TableValidator{MaxNullRate: 0.4}
	report, err := v.Validate(context.Background(), []string{"a", "b"}, []core.Record{{"a": "x"}, {"a": "y", "b": ""}})
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "field b has null rate 1.00")
}

func TestTableValidator_WarningCap(t *testing.T) {
	v := &TableValidator{
		MaxWarnings:     2,
		FieldValidators: map[string]FieldValidator{"n": {DataType: FieldTypeInt}},
	}
	recs := make([]core.Record, 5)
	for i := range recs {
		recs[i] = core.Record{"n": "x"}
	}
	report, err := v.Validate(context.Background(), []string{"n"}, recs)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 3)
	assert.Equal(t, "field n: 3 more invalid values", report.Warnings[2])
}
