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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

func decode(t *testing.T, raw string) []records.Project {
	t.Helper()
	var projects []records.Project
	require.NoError(t, json.Unmarshal([]byte(raw), &projects))
	return projects
}

func TestAccumulator_InsertOrUpdate(t *testing.T) {
	acc := NewAccumulator[string, Tally]()
	acc.Upsert("b", nil).Add(1)
	acc.Upsert("a", nil).Add(2)
	acc.Upsert("b", nil).Add(3)

	assert.Equal(t, 2, acc.Len())
	assert.Equal(t, []string{"b", "a"}, acc.Keys())

	b, ok := acc.Get("b")
	require.True(t, ok)
	assert.Equal(t, Tally{Count: 2, Sum: 4}, *b)

	_, ok = acc.Get("c")
	assert.False(t, ok)

	var order []string
	acc.Each(func(k string, v *Tally) { order = append(order, k) })
	assert.Equal(t, []string{"b", "a"}, order)

	init := 0
	acc.Upsert("a", func() Tally { init++; return Tally{} })
	assert.Equal(t, 0, init, "init only runs for new keys")
}

func TestCountries_EndToEnd(t *testing.T) {
	rows, err := Countries(context.Background(), decode(t,
		`[{"ApprovedRef":"FP099","TotalGCFFunding":200,"Countries":[{"ISO3":"KEN","CountryName":"Kenya"},{"ISO3":"UGA","CountryName":"Uganda"}],"ApprovalDate":"2019-03-01T00:00:00Z"}]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "KEN", rows[0].ISO3)
	assert.Equal(t, "Kenya", rows[0].CountryName)
	assert.Equal(t, 100.0, rows[0].FAFinancing)
	assert.Equal(t, 1, rows[0].FACount)
	assert.Equal(t, "UGA", rows[1].ISO3)
	assert.Equal(t, 100.0, rows[1].FAFinancing)
	assert.Equal(t, 1, rows[1].FACount)
	assert.Equal(t, "March 1, 2019", rows[1].ApprovalDate.String())
}

func TestCountryShares_Conservation(t *testing.T) {
	funding := 1000.0
	codes := []string{"BGD", "NPL", "BTN"}
	p := &records.Project{TotalGCFFunding: &funding}
	for i := range codes {
		p.Countries = append(p.Countries, records.Country{ISO3: &codes[i]})
	}

	shares := CountryShares(p)
	require.Len(t, shares, 3)

	var total float64
	for _, s := range shares {
		assert.Equal(t, funding/3, s.Amount)
		total += s.Amount
	}
	assert.InDelta(t, funding, total, 1e-9)
}

func TestCountries_FirstOccurrenceFixesMetadata(t *testing.T) {
	rows, err := Countries(context.Background(), decode(t, `[
		{"ApprovedRef":"FP001","TotalGCFFunding":50,"ApprovalDate":"2016-01-10T00:00:00Z",
		 "Countries":[{"ISO3":"FJI","CountryName":"Fiji","Region":"Asia-Pacific","SIDS":true}]},
		{"ApprovedRef":"FP002","TotalGCFFunding":30,"ApprovalDate":"2015-06-01T00:00:00Z",
		 "Countries":[{"ISO3":"FJI","CountryName":"Republic of Fiji","Region":"Other","SIDS":false}]}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "Fiji", row.CountryName)
	assert.Equal(t, "Asia-Pacific", row.Region)
	assert.True(t, row.SIDS)
	assert.Equal(t, "January 10, 2016", row.ApprovalDate.String())
	assert.Equal(t, 80.0, row.FAFinancing)
	assert.Equal(t, 2, row.FACount)
}

func TestCountries_ZeroCountryGuard(t *testing.T) {
	rows, err := Countries(context.Background(), decode(t, `[
		{"ApprovedRef":"FP001","TotalGCFFunding":500,"Countries":[]},
		{"ApprovedRef":"FP002","TotalGCFFunding":40,"Countries":[{"ISO3":"KEN"}]}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 40.0, rows[0].FAFinancing)
	assert.Equal(t, 1, rows[0].FACount)

	assert.Nil(t, CountryShares(&records.Project{}))
}

func TestCountries_MissingISO3KeepsDivisor(t *testing.T) {
	rows, err := Countries(context.Background(), decode(t, `[
		{"ApprovedRef":"FP003","TotalGCFFunding":90,"Countries":[{"ISO3":"KEN"},{"CountryName":"Nowhere"},{"ISO3":""}]}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 30.0, rows[0].FAFinancing)
}

func TestCountries_MalformedDate(t *testing.T) {
	_, err := Countries(context.Background(), decode(t, `[{"ApprovedRef":"FP9","ApprovalDate":"31/12/2019","Countries":[{"ISO3":"KEN"}]}]`))
	var dateErr *records.DateError
	assert.ErrorAs(t, err, &dateErr)
}

func TestEntities_Unsplit(t *testing.T) {
	rows, err := Entities(context.Background(), decode(t, `[
		{"ApprovedRef":"FP010","TotalGCFFunding":120,"ApprovalDate":"2018-02-01T00:00:00Z","Entities":[
			{"Acronym":"UNDP","Name":"United Nations Development Programme","Access":"International","Type":"International","Sector":"Public"},
			{"Acronym":"NABARD","Name":"National Bank for Agriculture","Access":"Direct","Type":"National","Sector":"Public"},
			{"Name":"No acronym"}
		]},
		{"ApprovedRef":"FP011","TotalGCFFunding":80,"ApprovalDate":"2017-02-01T00:00:00Z","Entities":[{"Acronym":"UNDP","Access":"Direct"}]},
		{"ApprovedRef":"FP012","Entities":[{"Acronym":"UNDP"}]}
	]`))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	undp, nabard := rows[0], rows[1]
	assert.Equal(t, "UNDP", undp.Entity)
	assert.Equal(t, records.DAEFalse, undp.DAE, "first occurrence fixes the flag")
	assert.Equal(t, 200.0, undp.FAFinancing)
	assert.Equal(t, 3, undp.Approved)
	assert.Equal(t, "February 1, 2018", undp.ApprovalDate.String())

	assert.Equal(t, "NABARD", nabard.Entity)
	assert.Equal(t, records.DAETrue, nabard.DAE)
	assert.Equal(t, 120.0, nabard.FAFinancing)
	assert.Equal(t, 1, nabard.Approved)

	rec := nabard.Record()
	assert.Equal(t, "TRUE", rec.Cell("DAE"))
	assert.Equal(t, "1", rec.Cell("# Approved"))
}

func TestEntities_Empty(t *testing.T) {
	rows, err := Entities(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
