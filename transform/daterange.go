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
	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// ApprovalColumn is the column every table uses for its time period.
const ApprovalColumn = "Approval Date"

// DateRange returns the earliest and latest approval dates among rows.
// Rows without a date are ignored; with none left both results are absent.
func DateRange[R records.Dated](rows []R) (earliest, latest records.Date) {
	for _, r := range rows {
		earliest, latest = widen(earliest, latest, r.Approval())
	}
	return earliest, latest
}

// RecordDateRange is DateRange over rendered records: it re-parses the
// "Approval Date" display string and ignores values that do not parse.
func RecordDateRange(recs []core.Record) (earliest, latest records.Date) {
	for _, rec := range recs {
		s := rec.Cell(ApprovalColumn)
		if s == "" {
			continue
		}
		d, err := records.ParseDisplayDate(s)
		if err != nil {
			continue
		}
		earliest, latest = widen(earliest, latest, d)
	}
	return earliest, latest
}

func widen(earliest, latest, d records.Date) (records.Date, records.Date) {
	if !d.Valid() {
		return earliest, latest
	}
	if !earliest.Valid() || d.Before(earliest) {
		earliest = d
	}
	if !latest.Valid() || latest.Before(d) {
		latest = d
	}
	return earliest, latest
}
