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

// Share is the part of one project's financing attributed to one country.
type Share struct {
	ISO3    string
	Country records.Country
	Amount  float64
}

// CountryShares splits a project's funding evenly across its Countries entries.
// The divisor is the full number of entries; entries without ISO3 get no share.
// A project without countries yields no shares.
func CountryShares(p *records.Project) []Share {
	if len(p.Countries) == 0 {
		return nil
	}
	amount := p.Funding() / float64(len(p.Countries))
	shares := make([]Share, 0, len(p.Countries))
	for _, c := range p.Countries {
		if c.ISO3 == nil || *c.ISO3 == "" {
			continue
		}
		shares = append(shares, Share{ISO3: *c.ISO3, Country: c, Amount: amount})
	}
	return shares
}

type countryEntry struct {
	row   records.CountryRow
	tally Tally
}

// Countries groups projects by ISO3 code in order of first occurrence.
// The first occurrence of a code fixes its name, region, LDC and SIDS flags and
// approval date; every occurrence adds its share and counts one project.
func Countries(ctx context.Context, projects []records.Project) ([]*records.CountryRow, error) {
	log := klog.FromContext(ctx)

	acc := NewAccumulator[string, countryEntry]()
	for i := range projects {
		p := &projects[i]
		approval, err := records.ParseTimestamp(p.ApprovalDate)
		if err != nil {
			return nil, fmt.Errorf("project %q approval date: %w", p.ApprovedRef, err)
		}
		if len(p.Countries) == 0 {
			log.V(4).Info("project has no countries", "ref", p.ApprovedRef)
			continue
		}
		for _, share := range CountryShares(p) {
			share := share
			entry := acc.Upsert(share.ISO3, func() countryEntry {
				return countryEntry{row: records.CountryRow{
					ISO3:         share.ISO3,
					CountryName:  deref(share.Country.CountryName),
					Region:       share.Country.Region,
					LDCs:         share.Country.LDCs,
					SIDS:         share.Country.SIDS,
					ApprovalDate: approval,
				}}
			})
			entry.tally.Add(share.Amount)
		}
	}

	rows := make([]*records.CountryRow, 0, acc.Len())
	for _, entry := range acc.Values() {
		row := entry.row
		row.FACount = entry.tally.Count
		row.FAFinancing = entry.tally.Sum
		rows = append(rows, &row)
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
