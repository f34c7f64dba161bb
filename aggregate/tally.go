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

// Tally is a running count and sum. Every Add counts once, including an Add of 0.
type Tally struct {
	Count int
	Sum   float64
}

// Add counts one occurrence contributing amount.
func (t *Tally) Add(amount float64) {
	t.Count++
	t.Sum += amount
}
