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

package writers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// Package writers renders table records to the published file formats.

// ErrNoHeaders is returned when a writer is created without column headers.
var ErrNoHeaders = errors.New("headers are required")

// CSVWriterError wraps CSV-specific write errors with context.
type CSVWriterError struct {
	Op  string
	Err error
}

func (e *CSVWriterError) Error() string {
	return fmt.Sprintf("csv writer %s: %v", e.Op, e.Err)
}

func (e *CSVWriterError) Unwrap() error {
	return e.Err
}

// CSVWriterStats holds CSV write statistics.
type CSVWriterStats struct {
	RecordsWritten  int64
	FlushCount      int64
	FlushDuration   time.Duration
	LastFlushTime   time.Time
	NullValueCounts map[string]int64
}

// CSVWriterOptions configures CSV output.
type CSVWriterOptions struct {
	Comma     rune
	UseCRLF   bool
	Headers   []string
	HXLTags   map[string]string
	BatchSize int
}

// WriterOptionCSV is a functional option.
type WriterOptionCSV func(*CSVWriterOptions)

// WithHeaders sets the column order. Required.
func WithHeaders(headers []string) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Headers = append([]string(nil), headers...)
	}
}

// WithHXLTags adds a second header line mapping columns to HXL hashtags.
// Columns without a tag get an empty cell. An empty map writes no HXL line.
func WithHXLTags(tags map[string]string) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.HXLTags = make(map[string]string, len(tags))
		for k, v := range tags {
			opts.HXLTags[k] = v
		}
	}
}

func WithComma(delim rune) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.Comma = delim
	}
}

func WithCSVBatchSize(size int) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.BatchSize = size
	}
}

func WithUseCRLF(useCRLF bool) WriterOptionCSV {
	return func(opts *CSVWriterOptions) {
		opts.UseCRLF = useCRLF
	}
}

// CSVWriter implements core.DataSink for CSV output with stats and batching.
type CSVWriter struct {
	writer      *csv.Writer
	closer      io.Closer
	options     CSVWriterOptions
	recordBuf   []core.Record
	stats       CSVWriterStats
	wroteHeader bool
	errorState  bool
	closed      bool
	mu          sync.Mutex
}

// NewCSVWriter creates a new CSV writer. Headers must be supplied with WithHeaders.
func NewCSVWriter(w io.WriteCloser, opts ...WriterOptionCSV) (*CSVWriter, error) {
	options := CSVWriterOptions{
		Comma:   ',',
		UseCRLF: true,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if len(options.Headers) == 0 {
		return nil, &CSVWriterError{Op: "create", Err: ErrNoHeaders}
	}

	cw := csv.NewWriter(w)
	cw.Comma = options.Comma
	cw.UseCRLF = options.UseCRLF

	return &CSVWriter{
		writer:    cw,
		closer:    w,
		options:   options,
		recordBuf: make([]core.Record, 0, max(options.BatchSize, 1)),
		stats:     CSVWriterStats{NullValueCounts: make(map[string]int64)},
	}, nil
}

// Write implements core.DataSink.
func (c *CSVWriter) Write(ctx context.Context, record core.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errorState {
		return &CSVWriterError{Op: "write", Err: fmt.Errorf("writer is in error state")}
	}

	if !c.wroteHeader {
		if err := c.writeHeaderUnsafe(); err != nil {
			c.errorState = true
			return &CSVWriterError{Op: "write_header", Err: err}
		}
	}

	for _, key := range c.options.Headers {
		if v, ok := record[key]; !ok || isNull(v) {
			c.stats.NullValueCounts[key]++
		}
	}

	c.recordBuf = append(c.recordBuf, record)
	c.stats.RecordsWritten++

	if c.options.BatchSize > 0 && len(c.recordBuf) >= c.options.BatchSize {
		if err := c.flushBufferUnsafe(); err != nil {
			c.errorState = true
			return &CSVWriterError{Op: "flush_batch", Err: err}
		}
	}
	return nil
}

// Flush implements core.DataSink.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushUnsafe()
}

// Close implements core.DataSink. A table with no records still gets its
// header lines. Close is idempotent.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if !c.wroteHeader && !c.errorState {
		if err := c.writeHeaderUnsafe(); err != nil {
			return &CSVWriterError{Op: "write_header", Err: err}
		}
	}
	if err := c.flushUnsafe(); err != nil {
		return err
	}
	if c.closer != nil {
		if err := c.closer.Close(); err != nil {
			return &CSVWriterError{Op: "close", Err: err}
		}
	}
	return nil
}

// Stats returns write statistics.
func (c *CSVWriter) Stats() CSVWriterStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	statsCopy := c.stats
	statsCopy.NullValueCounts = make(map[string]int64, len(c.stats.NullValueCounts))
	for k, v := range c.stats.NullValueCounts {
		statsCopy.NullValueCounts[k] = v
	}
	return statsCopy
}

func (c *CSVWriter) writeHeaderUnsafe() error {
	if err := c.writer.Write(c.options.Headers); err != nil {
		return err
	}
	if len(c.options.HXLTags) > 0 {
		tags := make([]string, len(c.options.Headers))
		for i, h := range c.options.Headers {
			tags[i] = c.options.HXLTags[h]
		}
		if err := c.writer.Write(tags); err != nil {
			return err
		}
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return err
	}
	c.wroteHeader = true
	return nil
}

func (c *CSVWriter) flushUnsafe() error {
	if err := c.flushBufferUnsafe(); err != nil {
		return &CSVWriterError{Op: "flush", Err: err}
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &CSVWriterError{Op: "flush_writer", Err: err}
	}
	return nil
}

// flushBufferUnsafe writes buffered records (must hold mutex).
func (c *CSVWriter) flushBufferUnsafe() error {
	if len(c.recordBuf) == 0 {
		return nil
	}

	start := time.Now()
	for _, record := range c.recordBuf {
		row := make([]string, len(c.options.Headers))
		for i, key := range c.options.Headers {
			row[i] = record.Cell(key)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer flush error: %w", err)
	}

	c.stats.FlushCount++
	c.stats.LastFlushTime = time.Now()
	c.stats.FlushDuration += time.Since(start)
	c.recordBuf = c.recordBuf[:0]
	return nil
}

func isNull(v interface{}) bool {
	return v == nil || core.FormatValue(v) == ""
}
