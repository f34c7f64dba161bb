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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/compress"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// ParquetWriterError wraps Parquet-specific write errors with context.
type ParquetWriterError struct {
	Op  string
	Err error
}

func (e *ParquetWriterError) Error() string {
	return fmt.Sprintf("parquet writer %s: %v", e.Op, e.Err)
}

func (e *ParquetWriterError) Unwrap() error {
	return e.Err
}

// ParquetWriterStats holds Parquet write statistics.
type ParquetWriterStats struct {
	RecordsWritten int64
	BatchesWritten int64
	FlushDuration  time.Duration
}

// ParquetWriterOptions configures Parquet output.
type ParquetWriterOptions struct {
	Headers     []string
	BatchSize   int
	Compression compress.Compression
}

// WriterOptionParquet is a functional option.
type WriterOptionParquet func(*ParquetWriterOptions)

// WithParquetHeaders sets the column order. Required.
func WithParquetHeaders(headers []string) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.Headers = append([]string(nil), headers...)
	}
}

func WithParquetBatchSize(size int) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.BatchSize = size
	}
}

func WithCompression(compression compress.Compression) WriterOptionParquet {
	return func(opts *ParquetWriterOptions) {
		opts.Compression = compression
	}
}

// ParquetWriter implements core.DataSink. Every column is a nullable UTF-8
// string holding the same text as the CSV cell, so both files agree.
type ParquetWriter struct {
	sink    io.WriteCloser
	writer  *pqarrow.FileWriter
	schema  *arrow.Schema
	builder *array.RecordBuilder
	opts    ParquetWriterOptions
	stats   ParquetWriterStats
	pending int
	closed  bool
	mu      sync.Mutex
}

// NewParquetWriter creates a Parquet writer over w.
func NewParquetWriter(w io.WriteCloser, opts ...WriterOptionParquet) (*ParquetWriter, error) {
	options := ParquetWriterOptions{
		BatchSize:   1000,
		Compression: compress.Codecs.Snappy,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if len(options.Headers) == 0 {
		return nil, &ParquetWriterError{Op: "create", Err: ErrNoHeaders}
	}

	fields := make([]arrow.Field, len(options.Headers))
	for i, h := range options.Headers {
		fields[i] = arrow.Field{Name: h, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	props := parquet.NewWriterProperties(parquet.WithCompression(options.Compression))
	// pqarrow closes the sink it is given; keep ownership here
	fw, err := pqarrow.NewFileWriter(schema, nopCloser{w}, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, &ParquetWriterError{Op: "open", Err: err}
	}

	return &ParquetWriter{
		sink:    w,
		writer:  fw,
		schema:  schema,
		builder: array.NewRecordBuilder(memory.DefaultAllocator, schema),
		opts:    options,
	}, nil
}

// Write implements core.DataSink.
func (p *ParquetWriter) Write(ctx context.Context, record core.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return &ParquetWriterError{Op: "write", Err: fmt.Errorf("writer is closed")}
	}

	for i, h := range p.opts.Headers {
		b := p.builder.Field(i).(*array.StringBuilder)
		v, ok := record[h]
		if !ok || v == nil {
			b.AppendNull()
			continue
		}
		b.Append(core.FormatValue(v))
	}
	p.pending++
	p.stats.RecordsWritten++

	if p.opts.BatchSize > 0 && p.pending >= p.opts.BatchSize {
		return p.flushUnsafe()
	}
	return nil
}

// Flush implements core.DataSink; buffered rows become a record batch.
func (p *ParquetWriter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	return p.flushUnsafe()
}

// Close implements core.DataSink. Close is idempotent.
func (p *ParquetWriter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	defer p.builder.Release()

	if err := p.flushUnsafe(); err != nil {
		return err
	}
	if err := p.writer.Close(); err != nil {
		return &ParquetWriterError{Op: "close_writer", Err: err}
	}
	if err := p.sink.Close(); err != nil {
		return &ParquetWriterError{Op: "close", Err: err}
	}
	return nil
}

// Stats returns write statistics.
func (p *ParquetWriter) Stats() ParquetWriterStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *ParquetWriter) flushUnsafe() error {
	if p.pending == 0 {
		return nil
	}
	start := time.Now()

	rec := p.builder.NewRecord()
	defer rec.Release()

	if err := p.writer.Write(rec); err != nil {
		return &ParquetWriterError{Op: "write_batch", Err: err}
	}
	p.pending = 0
	p.stats.BatchesWritten++
	p.stats.FlushDuration += time.Since(start)
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
