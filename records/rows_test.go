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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowRecords_MatchHeaders(t *testing.T) {
	tests := []struct {
		name    string
		row     Row
		headers []string
	}{
		{"activity", &ActivityRow{}, ActivityHeaders},
		{"country", &CountryRow{}, CountryHeaders},
		{"entity", &EntityRow{}, EntityHeaders},
		{"readiness", &ReadinessRow{}, ReadinessHeaders},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.row.Record()
			assert.Len(t, rec, len(tt.headers))
			for _, h := range tt.headers {
				assert.Contains(t, rec, h)
			}
		})
	}
}

func TestCountryRow_Record(t *testing.T) {
	row := &CountryRow{
		ISO3:         "KEN",
		CountryName:  "Kenya",
		Region:       "Africa",
		LDCs:         false,
		SIDS:         true,
		FAFinancing:  100,
		FACount:      1,
		ApprovalDate: NewDate(time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	rec := row.Record()

	assert.Equal(t, "KEN", rec.Cell("ISO3"))
	assert.Equal(t, "False", rec.Cell("LDCs"))
	assert.Equal(t, "True", rec.Cell("SIDS"))
	assert.Equal(t, "100", rec.Cell("FA Financing"))
	assert.Equal(t, "1", rec.Cell("# FA"))
	assert.Equal(t, "March 1, 2019", rec.Cell("Approval Date"))
}

func TestActivityRow_AbsentValues(t *testing.T) {
	rec := (&ActivityRow{Ref: "SAP001"}).Record()

	assert.Nil(t, rec["Approval Date"])
	assert.Equal(t, "", rec.Cell("Project Name"))
	assert.Equal(t, "", rec.Cell("FA Financing"))
	assert.Equal(t, "SAP001", rec.Cell("Ref #"))
}

func TestToRecords_KeepsOrder(t *testing.T) {
	rows := []*EntityRow{{Entity: "UNDP", DAE: DAEFalse}, {Entity: "NABARD", DAE: DAETrue}}
	recs := ToRecords(rows)

	require.Len(t, recs, 2)
	assert.Equal(t, "UNDP", recs[0].Cell("Entity"))
	assert.Equal(t, "TRUE", recs[1].Cell("DAE"))
}
