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

package gcf

import (
	"context"
	"errors"
	"fmt"
	"io"

	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// Package gcf streams rendered table records from a DataSource through a chain
// of Transformers into one or more DataSinks. The publish step uses it to write
// the same table to every configured output format in a single pass.
//
//   p, err := gcf.NewPipeline().
//       From(readers.NewSliceReader(rows)).
//       Transform(transform.Select(headers...)).
//       To(csvSink, parquetSink).
//       Build()
//   if err != nil { return err }
//   if err := p.Execute(ctx); err != nil { return err }

// PipelineBuilder provides a fluent API for constructing pipelines.
type PipelineBuilder struct {
	pipeline *Pipeline
}

// NewPipeline creates a new PipelineBuilder.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		pipeline: &Pipeline{
			transformers: make([]core.Transformer, 0),
			filters:      make([]core.Filter, 0),
			strategy:     core.FailFast,
		},
	}
}

// From sets the DataSource for the pipeline.
func (pb *PipelineBuilder) From(source core.DataSource) *PipelineBuilder {
	pb.pipeline.source = source
	return pb
}

// Transform adds a Transformer to the pipeline.
func (pb *PipelineBuilder) Transform(transformer core.Transformer) *PipelineBuilder {
	pb.pipeline.transformers = append(pb.pipeline.transformers, transformer)
	return pb
}

// Filter adds a Filter to the pipeline. Filters run after the transformers.
func (pb *PipelineBuilder) Filter(filter core.Filter) *PipelineBuilder {
	pb.pipeline.filters = append(pb.pipeline.filters, filter)
	return pb
}

// To adds sinks to the pipeline. Every record is written to each sink in order.
func (pb *PipelineBuilder) To(sinks ...core.DataSink) *PipelineBuilder {
	pb.pipeline.sinks = append(pb.pipeline.sinks, sinks...)
	return pb
}

// WithErrorStrategy sets the error handling strategy for the pipeline.
func (pb *PipelineBuilder) WithErrorStrategy(strategy core.ErrorStrategy) *PipelineBuilder {
	pb.pipeline.strategy = strategy
	return pb
}

// WithErrorHandler sets a custom error handler for the pipeline.
func (pb *PipelineBuilder) WithErrorHandler(handler core.ErrorHandler) *PipelineBuilder {
	pb.pipeline.errorHandler = handler
	return pb
}

// Build validates and constructs the Pipeline.
func (pb *PipelineBuilder) Build() (*Pipeline, error) {
	if pb.pipeline.source == nil {
		return nil, fmt.Errorf("pipeline requires a data source")
	}
	if len(pb.pipeline.sinks) == 0 {
		return nil, fmt.Errorf("pipeline requires at least one data sink")
	}
	return pb.pipeline, nil
}

// Pipeline is a built, single-use record stream.
type Pipeline struct {
	transformers []core.Transformer
	filters      []core.Filter
	source       core.DataSource
	sinks        []core.DataSink
	strategy     core.ErrorStrategy
	errorHandler core.ErrorHandler
	errs         []error
	written      int
	filtered     int
}

// Execute reads every record from the source, applies the transformers and
// writes the result to all sinks. Sinks are flushed and closed before Execute
// returns; a close failure is reported even when processing succeeded.
func (p *Pipeline) Execute(ctx context.Context) (err error) {
	log := klog.FromContext(ctx)

	defer func() {
		if cerr := p.source.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing source: %w", cerr)
		}
		for _, sink := range p.sinks {
			if cerr := sink.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing sink: %w", cerr)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := p.source.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		if len(record) == 0 {
			continue
		}

		transformed, err := p.applyTransformations(ctx, record)
		if err != nil {
			if err := p.handleError(ctx, record, err); err != nil {
				return err
			}
			continue
		}

		include, err := p.applyFilters(ctx, transformed)
		if err != nil {
			if err := p.handleError(ctx, transformed, err); err != nil {
				return err
			}
			continue
		}
		if !include {
			p.filtered++
			continue
		}

		if err := p.write(ctx, transformed); err != nil {
			if err := p.handleError(ctx, transformed, err); err != nil {
				return err
			}
			continue
		}
		p.written++
	}

	log.V(2).Info("pipeline finished", "records", p.written, "filtered", p.filtered, "sinks", len(p.sinks), "errors", len(p.errs))
	return nil
}

// Written returns the number of records delivered to every sink.
func (p *Pipeline) Written() int {
	return p.written
}

// Filtered returns the number of records dropped by filters.
func (p *Pipeline) Filtered() int {
	return p.filtered
}

// Errors returns the errors gathered under the CollectErrors strategy.
func (p *Pipeline) Errors() []error {
	return p.errs
}

func (p *Pipeline) write(ctx context.Context, record core.Record) error {
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) applyTransformations(ctx context.Context, record core.Record) (core.Record, error) {
	current := record
	for _, transformer := range p.transformers {
		transformed, err := transformer.Transform(ctx, current)
		if err != nil {
			return nil, err
		}
		current = transformed
	}
	return current, nil
}

func (p *Pipeline) applyFilters(ctx context.Context, record core.Record) (bool, error) {
	for _, filter := range p.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

func (p *Pipeline) handleError(ctx context.Context, record core.Record, err error) error {
	switch p.strategy {
	case core.FailFast:
		return err
	case core.CollectErrors:
		p.errs = append(p.errs, err)
		if p.errorHandler != nil {
			return p.errorHandler.HandleError(ctx, record, err)
		}
		return nil
	default:
		return err
	}
}
