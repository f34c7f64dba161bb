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

package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
	"github.com/OCHA-DAP/hdx-scraper-gcf/writers"
)

// Package output decides where generated table files go (local directory or
// S3 bucket) and builds the writer for each format.

// OutputFormat is a supported table file format.
type OutputFormat int

const (
	FormatCSV OutputFormat = iota
	FormatParquet
)

// String returns the catalog format name.
func (f OutputFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatParquet:
		return "parquet"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the file extension including the dot.
func (f OutputFormat) Extension() string {
	return "." + f.String()
}

// ParseFormat parses "csv" or "parquet", case-insensitively.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return 0, fmt.Errorf("unsupported output format %q", s)
	}
}

// Location is where table files are created.
type Location interface {
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	URL(name string) string
}

// SinkConfig describes one table file.
type SinkConfig struct {
	Format   OutputFormat
	Filename string
	Headers  []string
	HXLTags  map[string]string
}

// NewSink opens cfg.Filename at loc and wraps it in the writer for cfg.Format.
func NewSink(ctx context.Context, loc Location, cfg SinkConfig) (core.DataSink, error) {
	w, err := loc.Create(ctx, cfg.Filename)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", cfg.Filename, err)
	}

	var sink core.DataSink
	switch cfg.Format {
	case FormatCSV:
		sink, err = writers.NewCSVWriter(w, writers.WithHeaders(cfg.Headers), writers.WithHXLTags(cfg.HXLTags))
	case FormatParquet:
		sink, err = writers.NewParquetWriter(w, writers.WithParquetHeaders(cfg.Headers))
	default:
		err = fmt.Errorf("unsupported format %s", cfg.Format)
	}
	if err != nil {
		w.Close()
		return nil, err
	}
	return sink, nil
}

// FileLocation writes table files into a local directory.
type FileLocation struct {
	Dir string
}

// Create implements Location.
func (f FileLocation) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(f.Dir, name))
}

// URL implements Location.
func (f FileLocation) URL(name string) string {
	return filepath.Join(f.Dir, name)
}
