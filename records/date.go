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
	"fmt"
	"strings"
	"time"
)

// DisplayLayout is the emitted date form, e.g. "March 1, 2019".
const DisplayLayout = "January 2, 2006"

// Date is a calendar date without a time of day. The zero value is an absent
// date: it renders as an empty cell and is excluded from date ranges.
type Date struct {
	t     time.Time
	valid bool
}

// NewDate returns the calendar date of t in t's own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// ParseDisplayDate parses a date rendered with DisplayLayout.
func ParseDisplayDate(s string) (Date, error) {
	t, err := time.Parse(DisplayLayout, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

// Valid reports whether the date is present.
func (d Date) Valid() bool { return d.valid }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// Equal reports whether both dates are present and the same day, or both absent.
func (d Date) Equal(o Date) bool {
	return d.valid == o.valid && d.t.Equal(o.t)
}

// String renders the date as "Month D, YYYY", or "" when absent.
func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format(DisplayLayout)
}

// Display returns the rendered date, or nil when absent, so the cell is empty
// rather than an empty-string value.
func (d Date) Display() interface{} {
	if !d.valid {
		return nil
	}
	return d.String()
}

// DateError reports a date field that is present but not ISO-8601.
type DateError struct {
	Value string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("malformed date %q: %v", e.Value, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// timestampLayouts are tried in order. Fractional seconds are accepted by
// time.Parse after the seconds field even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an API timestamp such as "2019-03-01T00:00:00Z" into
// its calendar date. An empty value is an absent date, not an error.
func ParseTimestamp(value string) (Date, error) {
	if value == "" {
		return Date{}, nil
	}
	s := strings.TrimSpace(value)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewDate(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return Date{}, &DateError{Value: value, Err: firstErr}
}
