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

package readers

import (
	"context"
	"io"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// SliceReader implements core.DataSource over rows already in memory.
type SliceReader struct {
	records []core.Record
	pos     int
}

// NewSliceReader returns a DataSource yielding records in order.
func NewSliceReader(records []core.Record) *SliceReader {
	return &SliceReader{records: records}
}

// Read implements core.DataSource.
func (s *SliceReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Close implements core.DataSource.
func (s *SliceReader) Close() error {
	return nil
}
