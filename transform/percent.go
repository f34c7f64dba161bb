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
	"fmt"
	"strconv"
	"strings"
)

// PercentError reports a result-area value that is not "<number>%".
type PercentError struct {
	Value string
	Err   error
}

func (e *PercentError) Error() string {
	return fmt.Sprintf("malformed percentage %q: %v", e.Value, e.Err)
}

func (e *PercentError) Unwrap() error {
	return e.Err
}

// ParsePercent parses values such as "35.5%" or "0.00%". The trailing percent
// sign is optional.
func ParsePercent(value string) (float64, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimRight(s, "%")
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &PercentError{Value: value, Err: err}
	}
	return n, nil
}
