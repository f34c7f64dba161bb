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

package transform

import (
	"context"
	"fmt"
	"strings"

	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// Package transform maps raw API records onto the typed rows of the published
// tables, regroups activity rows per country and derives date ranges.

// APIURLPrefix is joined with a project's ProjectsID to form its API URL.
const APIURLPrefix = "http://api.gcfund.org/v1/projects/"

const listSep = ", "

// Modality classifies a funding proposal by its reference prefix.
// The match is case-sensitive; anything else yields "".
func Modality(ref string) string {
	switch {
	case strings.HasPrefix(ref, "FP"):
		return "FP"
	case strings.HasPrefix(ref, "SAP"):
		return "SAP"
	default:
		return ""
	}
}

// Activities maps each project onto one activity row, keeping input order.
// A malformed approval or completion date is returned as a *records.DateError.
// Result areas with a malformed percentage are left out and logged.
func Activities(ctx context.Context, projects []records.Project) ([]*records.ActivityRow, error) {
	rows := make([]*records.ActivityRow, 0, len(projects))
	for i := range projects {
		row, err := Activity(ctx, &projects[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Activity maps a single project.
func Activity(ctx context.Context, p *records.Project) (*records.ActivityRow, error) {
	approval, err := records.ParseTimestamp(p.ApprovalDate)
	if err != nil {
		return nil, fmt.Errorf("project %q approval date: %w", p.ApprovedRef, err)
	}
	completion, err := records.ParseTimestamp(p.DateCompletion)
	if err != nil {
		return nil, fmt.Errorf("project %q completion date: %w", p.ApprovedRef, err)
	}

	var entity string
	if len(p.Entities) > 0 {
		entity = p.Entities[0].Acronym
	}

	return &records.ActivityRow{
		Ref:            p.ApprovedRef,
		Modality:       Modality(p.ApprovedRef),
		ProjectName:    p.ProjectName,
		Entity:         entity,
		Countries:      CountryNames(p.Countries),
		CountryCodes:   CountryCodes(p.Countries),
		BoardMeeting:   p.BoardMeeting,
		Sector:         p.Sector,
		Theme:          p.Theme,
		ProjectSize:    p.Size,
		ApprovalDate:   approval,
		CompletionDate: completion,
		ESSCategory:    p.RiskCategory,
		FAFinancing:    p.TotalGCFFunding,
		ResultAreas:    ResultAreas(ctx, p.ApprovedRef, p.ResultAreas),
		Status:         p.Status,
		ProjectURL:     p.ProjectURL,
		APIURL:         APIURLPrefix + p.ProjectsID.String(),
	}, nil
}

// CountryNames joins the CountryName of every entry that has one.
func CountryNames(countries []records.Country) string {
	names := make([]string, 0, len(countries))
	for _, c := range countries {
		if c.CountryName != nil {
			names = append(names, *c.CountryName)
		}
	}
	return strings.Join(names, listSep)
}

// CountryCodes joins the ISO3 of every entry that has one.
func CountryCodes(countries []records.Country) string {
	codes := make([]string, 0, len(countries))
	for _, c := range countries {
		if c.ISO3 != nil {
			codes = append(codes, *c.ISO3)
		}
	}
	return strings.Join(codes, listSep)
}

// ResultAreas joins the areas whose percentage is above zero.
func ResultAreas(ctx context.Context, ref string, areas []records.ResultArea) string {
	log := klog.FromContext(ctx)

	names := make([]string, 0, len(areas))
	for _, a := range areas {
		if a.Value == "" {
			continue
		}
		pct, err := ParsePercent(a.Value)
		if err != nil {
			log.Info("skipping result area with malformed percentage", "ref", ref, "area", a.Area, "err", err)
			continue
		}
		if pct > 0 {
			names = append(names, a.Area)
		}
	}
	return strings.Join(names, listSep)
}
