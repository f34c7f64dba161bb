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

package records

import (
	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// Column order of each published table. These are the file contract for
// downstream consumers; do not reorder.
var (
	ActivityHeaders = []string{
		"Ref #", "Modality", "Project Name", "Entity", "Countries", "Country Codes",
		"Board Meeting", "Sector", "Theme", "Project Size", "Approval Date",
		"Completion Date", "ESS Category", "FA Financing", "Result Areas", "Status",
		"Project URL", "API URL",
	}
	CountryHeaders = []string{
		"ISO3", "Country Name", "Region", "LDCs", "SIDS", "FA Financing", "# FA", "Approval Date",
	}
	EntityHeaders = []string{
		"Entity", "Name", "DAE", "Type", "Sector", "# Approved", "FA Financing", "Approval Date",
	}
	ReadinessHeaders = []string{
		"Ref #", "Activity", "Project Title", "Country", "Delivery Partner", "Region",
		"Status", "Approval Date", "Financing",
	}
)

// Row is a typed table row that can render itself for the writers.
type Row interface {
	Record() core.Record
}

// Dated is a row with an optional approval date.
type Dated interface {
	Approval() Date
}

// ToRecords renders typed rows in order.
func ToRecords[R Row](rows []R) []core.Record {
	out := make([]core.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out
}

// ActivityRow is one funded activity, derived 1:1 from a Project.
type ActivityRow struct {
	Ref            string
	Modality       string
	ProjectName    *string
	Entity         string
	Countries      string
	CountryCodes   string
	BoardMeeting   string
	Sector         string
	Theme          string
	ProjectSize    string
	ApprovalDate   Date
	CompletionDate Date
	ESSCategory    string
	FAFinancing    *float64
	ResultAreas    string
	Status         string
	ProjectURL     string
	APIURL         string
}

// Approval implements Dated.
func (r *ActivityRow) Approval() Date { return r.ApprovalDate }

// Record implements Row.
func (r *ActivityRow) Record() core.Record {
	return core.Record{
		"Ref #":           r.Ref,
		"Modality":        r.Modality,
		"Project Name":    r.ProjectName,
		"Entity":          r.Entity,
		"Countries":       r.Countries,
		"Country Codes":   r.CountryCodes,
		"Board Meeting":   r.BoardMeeting,
		"Sector":          r.Sector,
		"Theme":           r.Theme,
		"Project Size":    r.ProjectSize,
		"Approval Date":   r.ApprovalDate.Display(),
		"Completion Date": r.CompletionDate.Display(),
		"ESS Category":    r.ESSCategory,
		"FA Financing":    r.FAFinancing,
		"Result Areas":    r.ResultAreas,
		"Status":          r.Status,
		"Project URL":     r.ProjectURL,
		"API URL":         r.APIURL,
	}
}

// CountryRow aggregates every project that references one ISO3 code.
// Metadata comes from the first project seen; FAFinancing is the sum of each
// project's funding divided by its number of countries.
type CountryRow struct {
	ISO3         string
	CountryName  string
	Region       string
	LDCs         bool
	SIDS         bool
	FAFinancing  float64
	FACount      int
	ApprovalDate Date
}

// Approval implements Dated.
func (r *CountryRow) Approval() Date { return r.ApprovalDate }

// Record implements Row.
func (r *CountryRow) Record() core.Record {
	return core.Record{
		"ISO3":          r.ISO3,
		"Country Name":  r.CountryName,
		"Region":        r.Region,
		"LDCs":          r.LDCs,
		"SIDS":          r.SIDS,
		"FA Financing":  r.FAFinancing,
		"# FA":          r.FACount,
		"Approval Date": r.ApprovalDate.Display(),
	}
}

// DAE flag values. They stay strings in the output table.
const (
	DAETrue  = "TRUE"
	DAEFalse = "FALSE"
)

// EntityRow aggregates every project that lists one entity acronym.
// FAFinancing is the unsplit funding of each such project.
type EntityRow struct {
	Entity       string
	Name         string
	DAE          string
	Type         string
	Sector       string
	Approved     int
	FAFinancing  float64
	ApprovalDate Date
}

// Approval implements Dated.
func (r *EntityRow) Approval() Date { return r.ApprovalDate }

// Record implements Row.
func (r *EntityRow) Record() core.Record {
	return core.Record{
		"Entity":        r.Entity,
		"Name":          r.Name,
		"DAE":           r.DAE,
		"Type":          r.Type,
		"Sector":        r.Sector,
		"# Approved":    r.Approved,
		"FA Financing":  r.FAFinancing,
		"Approval Date": r.ApprovalDate.Display(),
	}
}

// ReadinessRow is one readiness program, derived 1:1 from a Readiness record.
type ReadinessRow struct {
	Ref             *string
	Activity        *string
	ProjectTitle    *string
	Country         *string
	DeliveryPartner *string
	Region          *string
	Status          *string
	ApprovalDate    Date
	Financing       *float64
}

// Approval implements Dated.
func (r *ReadinessRow) Approval() Date { return r.ApprovalDate }

// Record implements Row.
func (r *ReadinessRow) Record() core.Record {
	return core.Record{
		"Ref #":            r.Ref,
		"Activity":         r.Activity,
		"Project Title":    r.ProjectTitle,
		"Country":          r.Country,
		"Delivery Partner": r.DeliveryPartner,
		"Region":           r.Region,
		"Status":           r.Status,
		"Approval Date":    r.ApprovalDate.Display(),
		"Financing":        r.Financing,
	}
}
