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

// Package catalog describes published datasets and records them in a catalog
// backend (JSON files, PostgreSQL or MongoDB).
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// CatalogError wraps backend failures with the operation and dataset name.
type CatalogError struct {
	Op      string
	Dataset string
	Err     error
}

func (e *CatalogError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.Dataset, e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Catalog stores dataset metadata and returns an external id for it.
// Upserting a dataset with an existing name replaces it.
type Catalog interface {
	Upsert(ctx context.Context, ds *Dataset) (string, error)
	Close(ctx context.Context) error
}

// Tag is a catalog tag.
type Tag struct {
	Name         string `json:"name" bson:"name" yaml:"name"`
	VocabularyID string `json:"vocabulary_id,omitempty" bson:"vocabulary_id,omitempty" yaml:"vocabulary_id,omitempty"`
}

// Group is a location group: "world" or a lower-case ISO3 code.
type Group struct {
	Name string `json:"name" bson:"name"`
}

// Resource is one file attached to a dataset.
type Resource struct {
	Name         string `json:"name" bson:"name"`
	Description  string `json:"description" bson:"description"`
	Format       string `json:"format" bson:"format"`
	URL          string `json:"url,omitempty" bson:"url,omitempty"`
	ResourceType string `json:"resource_type" bson:"resource_type"`
	URLType      string `json:"url_type" bson:"url_type"`
}

// Dataset is the catalog record for one published table.
type Dataset struct {
	Name                string     `json:"name" bson:"name"`
	Title               string     `json:"title" bson:"title"`
	DatasetDate         string     `json:"dataset_date,omitempty" bson:"dataset_date,omitempty"`
	Tags                []Tag      `json:"tags,omitempty" bson:"tags,omitempty"`
	Groups              []Group    `json:"groups,omitempty" bson:"groups,omitempty"`
	Caveats             string     `json:"caveats,omitempty" bson:"caveats,omitempty"`
	Notes               string     `json:"notes,omitempty" bson:"notes,omitempty"`
	LicenseID           string     `json:"license_id,omitempty" bson:"license_id,omitempty"`
	Methodology         string     `json:"methodology,omitempty" bson:"methodology,omitempty"`
	DatasetSource       string     `json:"dataset_source,omitempty" bson:"dataset_source,omitempty"`
	PackageCreator      string     `json:"package_creator,omitempty" bson:"package_creator,omitempty"`
	Private             bool       `json:"private" bson:"private"`
	Maintainer          string     `json:"maintainer,omitempty" bson:"maintainer,omitempty"`
	OwnerOrg            string     `json:"owner_org,omitempty" bson:"owner_org,omitempty"`
	DataUpdateFrequency int        `json:"data_update_frequency,omitempty" bson:"data_update_frequency,omitempty"`
	Resources           []Resource `json:"resources,omitempty" bson:"resources,omitempty"`
}

// NewDataset returns a dataset with a name and title.
func NewDataset(name, title string) *Dataset {
	return &Dataset{Name: name, Title: title}
}

// AddTags adds tags by name, skipping ones already present.
func (d *Dataset) AddTags(vocabularyID string, names ...string) {
	for _, n := range names {
		if d.hasTag(n) {
			continue
		}
		d.Tags = append(d.Tags, Tag{Name: n, VocabularyID: vocabularyID})
	}
}

func (d *Dataset) hasTag(name string) bool {
	for _, t := range d.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// AddOtherLocation adds a non-country location such as "world".
func (d *Dataset) AddOtherLocation(name string) {
	d.addGroup(name)
}

// AddCountryLocation adds a country by ISO3 code.
func (d *Dataset) AddCountryLocation(iso3 string) {
	d.addGroup(strings.ToLower(iso3))
}

func (d *Dataset) addGroup(name string) {
	for _, g := range d.Groups {
		if g.Name == name {
			return
		}
	}
	d.Groups = append(d.Groups, Group{Name: name})
}

// SetTimePeriod sets the dataset date from an approval date range.
// An absent start leaves the dataset without a time period.
func (d *Dataset) SetTimePeriod(start, end records.Date) {
	d.DatasetDate = TimePeriod{Start: start, End: end}.String()
}

// AddResource appends or replaces (by name and format) a resource.
func (d *Dataset) AddResource(r Resource) {
	for i := range d.Resources {
		if d.Resources[i].Name == r.Name && d.Resources[i].Format == r.Format {
			d.Resources[i] = r
			return
		}
	}
	d.Resources = append(d.Resources, r)
}

// TimePeriod is an inclusive range of calendar days.
type TimePeriod struct {
	Start records.Date
	End   records.Date
}

// String renders "[2015-11-05T00:00:00 TO 2025-07-03T23:59:59]". A missing
// end collapses to the start day; a missing start renders "".
func (p TimePeriod) String() string {
	if !p.Start.Valid() {
		return ""
	}
	end := p.End
	if !end.Valid() {
		end = p.Start
	}
	return fmt.Sprintf("[%sT00:00:00 TO %sT23:59:59]",
		p.Start.Time().Format("2006-01-02"), end.Time().Format("2006-01-02"))
}
