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

// Package scraper generates the GCF datasets: one per table plus one
// activities dataset per country.
package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosimple/slug"
	"k8s.io/klog/v2"

	gcf "github.com/OCHA-DAP/hdx-scraper-gcf"
	"github.com/OCHA-DAP/hdx-scraper-gcf/aggregate"
	"github.com/OCHA-DAP/hdx-scraper-gcf/catalog"
	"github.com/OCHA-DAP/hdx-scraper-gcf/config"
	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
	"github.com/OCHA-DAP/hdx-scraper-gcf/filter"
	"github.com/OCHA-DAP/hdx-scraper-gcf/publish"
	"github.com/OCHA-DAP/hdx-scraper-gcf/readers"
	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
	"github.com/OCHA-DAP/hdx-scraper-gcf/transform"
	"github.com/OCHA-DAP/hdx-scraper-gcf/validators"
	"github.com/OCHA-DAP/hdx-scraper-gcf/writers"
)

// TagVocabularyID is the approved tag vocabulary.
const TagVocabularyID = "b891512e-9516-4bf5-962a-7a289772a2a1"

// Publisher publishes one table as a dataset.
type Publisher interface {
	Publish(ctx context.Context, table publish.Table, ds *catalog.Dataset) (*publish.Handle, error)
}

// Pipeline builds rows from the source and hands each table to the publisher.
// Derived rows are computed once and reused across datasets.
type Pipeline struct {
	cfg       *config.Config
	static    catalog.Static
	source    *Source
	publisher Publisher

	activities []*records.ActivityRow
	countries  []*records.CountryRow
}

// New returns a Pipeline.
func New(cfg *config.Config, static catalog.Static, source *Source, publisher Publisher) *Pipeline {
	return &Pipeline{cfg: cfg, static: static, source: source, publisher: publisher}
}

// RunSummary lists what a run published.
type RunSummary struct {
	Datasets []*publish.Handle
	Skipped  []string
	Failed   []string
}

// Run generates the four table datasets and then every per-country dataset.
// A failed dataset does not stop the run; all failures are returned joined.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	log := klog.FromContext(ctx)
	summary := &RunSummary{}
	var errs []error

	record := func(name string, h *publish.Handle, err error) {
		switch {
		case err != nil:
			log.Error(err, "dataset failed", "dataset", name)
			summary.Failed = append(summary.Failed, name)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		case h == nil:
			summary.Skipped = append(summary.Skipped, name)
		default:
			summary.Datasets = append(summary.Datasets, h)
		}
	}

	generators := map[string]func(context.Context) (*publish.Handle, error){
		"activities": p.GenerateActivitiesDataset,
		"countries":  p.GenerateCountriesDataset,
		"entities":   p.GenerateEntitiesDataset,
		"readiness":  p.GenerateReadinessDataset,
	}
	for _, table := range config.Tables {
		h, err := generators[table](ctx)
		record(table, h, err)
	}

	groups, err := p.ActivitiesByCountry(ctx)
	if err != nil {
		record("activities by country", nil, err)
		return summary, errors.Join(errs...)
	}
	groups.Each(func(iso3 string, rows *[]*records.ActivityRow) {
		h, err := p.GenerateActivitiesByCountryDataset(ctx, iso3, *rows)
		record(iso3, h, err)
	})

	log.Info("run finished", "published", len(summary.Datasets), "skipped", len(summary.Skipped), "failed", len(summary.Failed))
	return summary, errors.Join(errs...)
}

// GenerateActivitiesDataset publishes the funded activities table.
func (p *Pipeline) GenerateActivitiesDataset(ctx context.Context) (*publish.Handle, error) {
	rows, err := p.activityRows(ctx)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, "activities", records.ToRecords(rows), records.ActivityHeaders, activityChecks(), func() (records.Date, records.Date) {
		return transform.DateRange(rows)
	})
}

// GenerateCountriesDataset publishes the per-country totals table.
func (p *Pipeline) GenerateCountriesDataset(ctx context.Context) (*publish.Handle, error) {
	rows, err := p.countryRows(ctx)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, "countries", records.ToRecords(rows), records.CountryHeaders, countryChecks(), func() (records.Date, records.Date) {
		return transform.DateRange(rows)
	})
}

// GenerateEntitiesDataset publishes the per-entity totals table.
func (p *Pipeline) GenerateEntitiesDataset(ctx context.Context) (*publish.Handle, error) {
	projects, err := p.source.Projects(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := aggregate.Entities(ctx, projects)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, "entities", records.ToRecords(rows), records.EntityHeaders, entityChecks(), func() (records.Date, records.Date) {
		return transform.DateRange(rows)
	})
}

// GenerateReadinessDataset publishes the readiness programme table.
func (p *Pipeline) GenerateReadinessDataset(ctx context.Context) (*publish.Handle, error) {
	programs, err := p.source.Readiness(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := transform.ReadinessRows(ctx, programs)
	if err != nil {
		return nil, err
	}
	return p.generate(ctx, "readiness", records.ToRecords(rows), records.ReadinessHeaders, readinessChecks(), func() (records.Date, records.Date) {
		return transform.DateRange(rows)
	})
}

// ActivitiesByCountry groups the activity rows under each country code they list.
func (p *Pipeline) ActivitiesByCountry(ctx context.Context) (*aggregate.Accumulator[string, []*records.ActivityRow], error) {
	rows, err := p.activityRows(ctx)
	if err != nil {
		return nil, err
	}
	return transform.GroupByCountry(rows), nil
}

// GenerateActivitiesByCountryDataset publishes the activities of one country.
// Returns nil, nil when rows is empty.
func (p *Pipeline) GenerateActivitiesByCountryDataset(ctx context.Context, iso3 string, rows []*records.ActivityRow) (*publish.Handle, error) {
	if len(rows) == 0 {
		klog.FromContext(ctx).Info("no activities, skipping country dataset", "iso3", iso3)
		return nil, nil
	}

	recs, err := p.countryRecords(ctx, iso3, len(rows))
	if err != nil {
		return nil, err
	}

	name := p.countryName(ctx, iso3)
	t := p.cfg.Table("activities")
	title := fmt.Sprintf("%s - GCF Funded Activities", name)

	ds := p.newDataset(title, t)
	ds.AddCountryLocation(iso3)
	ds.SetTimePeriod(transform.DateRange(rows))

	return p.publisher.Publish(ctx, publish.Table{
		Name:        t.Resource,
		Description: fmt.Sprintf("%s in %s", t.Description, name),
		Headers:     records.ActivityHeaders,
		HXLTags:     t.HXLTags,
		Filename:    ds.Name + ".csv",
		Rows:        recs,
		Checks:      activityChecks(),
	}, ds)
}

// countryRecords selects the rendered activity rows listing iso3 in their
// "Country Codes" column. The count must match the grouped rows.
func (p *Pipeline) countryRecords(ctx context.Context, iso3 string, grouped int) ([]core.Record, error) {
	rows, err := p.activityRows(ctx)
	if err != nil {
		return nil, err
	}

	collector := writers.NewRecordCollector()
	pipeline, err := gcf.NewPipeline().
		From(readers.NewSliceReader(records.ToRecords(rows))).
		Filter(filter.HasCode("Country Codes", iso3)).
		To(collector).
		Build()
	if err != nil {
		return nil, err
	}
	if err := pipeline.Execute(ctx); err != nil {
		return nil, fmt.Errorf("selecting %s activities: %w", iso3, err)
	}

	recs := collector.Records()
	if len(recs) != grouped {
		return nil, fmt.Errorf("%s: %d activities list the code but %d were grouped", iso3, len(recs), grouped)
	}
	return recs, nil
}

func (p *Pipeline) generate(ctx context.Context, table string, rows []core.Record, headers []string, checks *validators.TableValidator, dates func() (records.Date, records.Date)) (*publish.Handle, error) {
	if len(rows) == 0 {
		klog.FromContext(ctx).Info("no rows, skipping dataset", "table", table)
		return nil, nil
	}

	t := p.cfg.Table(table)
	ds := p.newDataset(t.Title, t)
	ds.AddOtherLocation("world")
	ds.SetTimePeriod(dates())

	return p.publisher.Publish(ctx, publish.Table{
		Name:        t.Resource,
		Description: t.Description,
		Headers:     headers,
		HXLTags:     t.HXLTags,
		Filename:    t.Resource + ".csv",
		Rows:        rows,
		Checks:      checks,
	}, ds)
}

func (p *Pipeline) newDataset(title string, t config.TableConfig) *catalog.Dataset {
	ds := catalog.NewDataset(slug.Make(title), title)
	ds.AddTags(TagVocabularyID, p.cfg.Tags...)
	p.static.Apply(ds)
	ds.Caveats = t.Caveats
	ds.Notes = t.Notes
	return ds
}

func (p *Pipeline) activityRows(ctx context.Context) ([]*records.ActivityRow, error) {
	if p.activities != nil {
		return p.activities, nil
	}
	projects, err := p.source.Projects(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := transform.Activities(ctx, projects)
	if err != nil {
		return nil, err
	}
	p.activities = rows
	return rows, nil
}

func (p *Pipeline) countryRows(ctx context.Context) ([]*records.CountryRow, error) {
	if p.countries != nil {
		return p.countries, nil
	}
	projects, err := p.source.Projects(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := aggregate.Countries(ctx, projects)
	if err != nil {
		return nil, err
	}
	p.countries = rows
	return rows, nil
}

// countryName looks iso3 up in the aggregated country rows and falls back to
// the code itself.
func (p *Pipeline) countryName(ctx context.Context, iso3 string) string {
	rows, err := p.countryRows(ctx)
	if err != nil {
		return iso3
	}
	for _, r := range rows {
		if r.ISO3 == iso3 && r.CountryName != "" {
			return r.CountryName
		}
	}
	return iso3
}
