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

package filter

import (
	"context"
	"strings"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// Package filter provides record filters for the gcf pipeline.

// NotBlank includes records where at least one of the fields has a
// non-empty value. With no fields it checks every column.
func NotBlank(fields ...string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		if len(fields) == 0 {
			for column := range record {
				if record.Cell(column) != "" {
					return true, nil
				}
			}
			return false, nil
		}
		for _, f := range fields {
			if record.Cell(f) != "" {
				return true, nil
			}
		}
		return false, nil
	})
}

// HasCode includes records whose field is a ", " joined code list that
// contains code, such as the "Country Codes" column of the activity table.
func HasCode(field, code string) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, c := range strings.Split(record.Cell(field), ",") {
			if strings.TrimSpace(c) == code {
				return true, nil
			}
		}
		return false, nil
	})
}
