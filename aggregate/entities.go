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

package aggregate

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

type entityEntry struct {
	row   records.EntityRow
	tally Tally
}

// Entities groups projects by entity acronym in order of first occurrence.
// A project with several entities adds its full funding to each of them.
// Entities without an acronym are dropped.
func Entities(ctx context.Context, projects []records.Project) ([]*records.EntityRow, error) {
	log := klog.FromContext(ctx)

	acc := NewAccumulator[string, entityEntry]()
	for i := range projects {
		p := &projects[i]
		approval, err := records.ParseTimestamp(p.ApprovalDate)
		if err != nil {
			return nil, fmt.Errorf("project %q approval date: %w", p.ApprovedRef, err)
		}
		funding := p.Funding()
		for _, e := range p.Entities {
			if e.Acronym == "" {
				log.V(4).Info("skipping entity without acronym", "ref", p.ApprovedRef, "name", e.Name)
				continue
			}
			e := e
			entry := acc.Upsert(e.Acronym, func() entityEntry {
				return entityEntry{row: records.EntityRow{
					Entity:       e.Acronym,
					Name:         e.Name,
					DAE:          daeFlag(e.Access),
					Type:         e.Type,
					Sector:       e.Sector,
					ApprovalDate: approval,
				}}
			})
			entry.tally.Add(funding)
		}
	}

	rows := make([]*records.EntityRow, 0, acc.Len())
	for _, entry := range acc.Values() {
		row := entry.row
		row.Approved = entry.tally.Count
		row.FAFinancing = entry.tally.Sum
		rows = append(rows, &row)
	}
	return rows, nil
}

func daeFlag(access string) string {
	if access == "Direct" {
		return records.DAETrue
	}
	return records.DAEFalse
}
