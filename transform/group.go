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
	"strings"

	"github.com/OCHA-DAP/hdx-scraper-gcf/aggregate"
	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// SplitCodes splits a joined "Country Codes" value, trimming blanks and
// dropping empty segments.
func SplitCodes(joined string) []string {
	var codes []string
	for _, part := range strings.Split(joined, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// GroupByCountry buckets activity rows under every country code they list,
// in order of first appearance. Rows are shared, not copied, and a row lands
// in a bucket at most once even if its codes repeat.
func GroupByCountry(rows []*records.ActivityRow) *aggregate.Accumulator[string, []*records.ActivityRow] {
	groups := aggregate.NewAccumulator[string, []*records.ActivityRow]()
	for _, row := range rows {
		seen := make(map[string]bool)
		for _, code := range SplitCodes(row.CountryCodes) {
			if seen[code] {
				continue
			}
			seen[code] = true
			bucket := groups.Upsert(code, nil)
			*bucket = append(*bucket, row)
		}
	}
	return groups
}
