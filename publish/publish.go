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

package publish

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	gcf "github.com/OCHA-DAP/hdx-scraper-gcf"
	"github.com/OCHA-DAP/hdx-scraper-gcf/catalog"
	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
	"github.com/OCHA-DAP/hdx-scraper-gcf/filter"
	"github.com/OCHA-DAP/hdx-scraper-gcf/output"
	"github.com/OCHA-DAP/hdx-scraper-gcf/readers"
	"github.com/OCHA-DAP/hdx-scraper-gcf/transform"
	"github.com/OCHA-DAP/hdx-scraper-gcf/validators"
)

// Package publish writes a rendered table to every configured output format
// and records the resulting dataset in the catalog.

var (
	// ErrEmptyTable is returned for a table with no rows. Nothing is written.
	ErrEmptyTable = errors.New("table has no rows")
	// ErrNoHeaders is returned for a table with no columns.
	ErrNoHeaders = errors.New("table has no headers")
	// ErrNoDataset is returned when Publish is called without a dataset.
	ErrNoDataset = errors.New("dataset is required")
)

// PublishError wraps a failure while publishing one table.
type PublishError struct {
	Op    string
	Table string
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s [%s]: %v", e.Op, e.Table, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// Table is one rendered table ready for publication.
type Table struct {
	// Name is the resource name, e.g. "GCF Funded Activities".
	Name        string
	Description string
	Headers     []string
	// HXLTags maps header to tag. An empty map means no HXL row.
	HXLTags map[string]string
	// Filename is the CSV file name. Other formats replace its extension.
	Filename string
	Rows     []core.Record
	// Checks overrides the default validator.
	Checks *validators.TableValidator
}

// Handle identifies a published dataset.
type Handle struct {
	ID        string
	Name      string
	Resources []catalog.Resource
	// Rows is the number of rows written to every file.
	Rows int
	// Dropped counts rows left out because every column was blank.
	Dropped int
}

// Publisher writes tables and registers datasets.
type Publisher struct {
	location output.Location
	catalog  catalog.Catalog
	formats  []output.OutputFormat
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithFormats sets the emitted formats. The default is CSV only.
func WithFormats(formats ...output.OutputFormat) Option {
	return func(p *Publisher) {
		if len(formats) > 0 {
			p.formats = formats
		}
	}
}

// NewPublisher returns a Publisher writing to loc and registering in cat.
func NewPublisher(loc output.Location, cat catalog.Catalog, opts ...Option) *Publisher {
	p := &Publisher{
		location: loc,
		catalog:  cat,
		formats:  []output.OutputFormat{output.FormatCSV},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes table in every configured format, attaches one resource per
// file to ds and upserts ds into the catalog. Precondition failures are
// reported before any file is created.
func (p *Publisher) Publish(ctx context.Context, table Table, ds *catalog.Dataset) (*Handle, error) {
	log := klog.FromContext(ctx).WithValues("table", table.Name)

	if ds == nil {
		return nil, &PublishError{Op: "validate", Table: table.Name, Err: ErrNoDataset}
	}
	if len(table.Rows) == 0 {
		return nil, &PublishError{Op: "validate", Table: table.Name, Err: ErrEmptyTable}
	}
	if len(table.Headers) == 0 {
		return nil, &PublishError{Op: "validate", Table: table.Name, Err: ErrNoHeaders}
	}

	checks := table.Checks
	if checks == nil {
		checks = &validators.TableValidator{MinRecords: 1}
	}
	report, err := checks.Validate(ctx, table.Headers, table.Rows)
	if err != nil {
		return nil, &PublishError{Op: "validate", Table: table.Name, Err: err}
	}
	if len(report.Warnings) > 0 {
		log.Info("table has validation warnings", "count", len(report.Warnings))
	}

	sinks := make([]core.DataSink, 0, len(p.formats))
	names := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		name := FileName(table.Filename, format)
		sink, err := output.NewSink(ctx, p.location, output.SinkConfig{
			Format:   format,
			Filename: name,
			Headers:  table.Headers,
			HXLTags:  table.HXLTags,
		})
		if err != nil {
			for _, s := range sinks {
				s.Close()
			}
			return nil, &PublishError{Op: "open", Table: table.Name, Err: err}
		}
		sinks = append(sinks, sink)
		names = append(names, name)
	}

	pipeline, err := gcf.NewPipeline().
		From(readers.NewSliceReader(table.Rows)).
		Transform(transform.Select(table.Headers...)).
		Filter(filter.NotBlank(table.Headers...)).
		To(sinks...).
		WithErrorStrategy(core.CollectErrors).
		WithErrorHandler(core.ErrorHandlerFunc(func(ctx context.Context, record core.Record, err error) error {
			log.V(2).Info("row not written", "err", err)
			return nil
		})).
		Build()
	if err != nil {
		return nil, &PublishError{Op: "build", Table: table.Name, Err: err}
	}
	execErr := pipeline.Execute(ctx)
	if errs := pipeline.Errors(); len(errs) > 0 || execErr != nil {
		return nil, &PublishError{Op: "write", Table: table.Name, Err: errors.Join(append([]error{execErr}, errs...)...)}
	}
	if n := pipeline.Filtered(); n > 0 {
		log.Info("dropped blank rows", "count", n)
	}

	setTimePeriod(ctx, ds, table.Rows)

	for i, format := range p.formats {
		ds.AddResource(catalog.Resource{
			Name:         table.Name,
			Description:  table.Description,
			Format:       format.String(),
			URL:          p.location.URL(names[i]),
			ResourceType: "file.upload",
			URLType:      "upload",
		})
	}

	id, err := p.catalog.Upsert(ctx, ds)
	if err != nil {
		return nil, &PublishError{Op: "catalog", Table: table.Name, Err: err}
	}

	log.V(1).Info("published dataset", "dataset", ds.Name, "id", id, "rows", pipeline.Written(), "files", names)
	return &Handle{
		ID:        id,
		Name:      ds.Name,
		Resources: ds.Resources,
		Rows:      pipeline.Written(),
		Dropped:   pipeline.Filtered(),
	}, nil
}

// setTimePeriod fills an unset dataset time period from the rows' approval
// dates, and logs when a period set by the caller disagrees with them.
func setTimePeriod(ctx context.Context, ds *catalog.Dataset, rows []core.Record) {
	start, end := transform.RecordDateRange(rows)
	period := catalog.TimePeriod{Start: start, End: end}.String()
	switch {
	case period == "":
	case ds.DatasetDate == "":
		ds.DatasetDate = period
	case ds.DatasetDate != period:
		klog.FromContext(ctx).Info("dataset time period differs from row approval dates",
			"dataset", ds.Name, "period", ds.DatasetDate, "rows", period)
	}
}

// FileName returns filename with its extension replaced by format's.
func FileName(filename string, format output.OutputFormat) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return base + format.Extension()
}
