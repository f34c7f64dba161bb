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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

func include(t *testing.T, f core.Filter, r core.Record) bool {
	t.Helper()
	ok, err := f.ShouldInclude(context.Background(), r)
	require.NoError(t, err)
	return ok
}

func TestNotBlank(t *testing.T) {
	assert.True(t, include(t, NotBlank("a", "b"), core.Record{"a": nil, "b": 0}))
	assert.False(t, include(t, NotBlank("a", "b"), core.Record{"a": nil, "b": "", "c": "x"}))
	assert.True(t, include(t, NotBlank(), core.Record{"c": "x"}))
	assert.False(t, include(t, NotBlank(), core.Record{"c": nil}))
}

func TestHasCode(t *testing.T) {
	f := HasCode("Country Codes", "UGA")
	assert.True(t, include(t, f, core.Record{"Country Codes": "KEN, UGA"}))
	assert.False(t, include(t, f, core.Record{"Country Codes": "KEN, UGAN"}))
	assert.False(t, include(t, f, core.Record{}))
}
