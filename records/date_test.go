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
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"utc designator", "2019-03-01T00:00:00Z", "March 1, 2019"},
		{"fractional seconds", "2015-11-05T10:15:30.123Z", "November 5, 2015"},
		{"offset keeps local day", "2020-07-03T23:30:00-05:00", "July 3, 2020"},
		{"basic offset", "2019-03-01T00:00:00+0000", "March 1, 2019"},
		{"basic offset with fraction", "2016-05-04T09:00:00.5+0300", "May 4, 2016"},
		{"no zone", "2021-01-31T08:00:00", "January 31, 2021"},
		{"date only", "2018-12-09", "December 9, 2018"},
		{"space separator", "2017-06-15 12:00:00", "June 15, 2017"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, d.Valid())
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, tt.want, d.Display())
		})
	}
}

func TestParseTimestamp_Empty(t *testing.T) {
	d, err := ParseTimestamp("")
	require.NoError(t, err)
	assert.False(t, d.Valid())
	assert.Equal(t, "", d.String())
	assert.Nil(t, d.Display())
}

func TestParseTimestamp_Malformed(t *testing.T) {
	_, err := ParseTimestamp("01/03/2019")
	require.Error(t, err)

	var dateErr *DateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "01/03/2019", dateErr.Value)
	assert.Contains(t, err.Error(), "malformed date")
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(time.Date(2019, 3, 1, 18, 0, 0, 0, time.UTC))
	b := NewDate(time.Date(2019, 3, 1, 2, 0, 0, 0, time.UTC))
	c := NewDate(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, a.Equal(b), "time of day is dropped")
	assert.True(t, a.Before(c))
	assert.False(t, c.Before(a))
	assert.True(t, Date{}.Equal(Date{}))
	assert.False(t, a.Equal(Date{}))
}

func TestParseDisplayDate_RoundTrip(t *testing.T) {
	d, err := ParseTimestamp("2024-10-09T00:00:00Z")
	require.NoError(t, err)

	back, err := ParseDisplayDate(d.String())
	require.NoError(t, err)
	assert.True(t, d.Equal(back))

	_, err = ParseDisplayDate("2024-10-09")
	assert.Error(t, err)
}

func TestFlexString_Unmarshal(t *testing.T) {
	var p struct {
		ID FlexString `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"id": 1234}`), &p))
	assert.Equal(t, "1234", p.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "FP099"}`), &p))
	assert.Equal(t, "FP099", p.ID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id": null}`), &p))
	assert.Equal(t, "", p.ID.String())

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &p))
}

func TestProject_Decode(t *testing.T) {
	raw := `{
		"ApprovedRef": "FP099",
		"TotalGCFFunding": 200,
		"Countries": [{"ISO3": "KEN", "CountryName": "Kenya", "LDCs": false, "SIDS": null}],
		"ApprovalDate": "2019-03-01T00:00:00Z",
		"ProjectsID": 412
	}`
	var p Project
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "FP099", p.ApprovedRef)
	assert.Equal(t, 200.0, p.Funding())
	require.Len(t, p.Countries, 1)
	assert.Equal(t, "KEN", *p.Countries[0].ISO3)
	assert.Nil(t, p.ProjectName)
	assert.Equal(t, "412", p.ProjectsID.String())

	assert.Equal(t, 0.0, (&Project{}).Funding())
}
