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

// Package aggregate groups project records by a key and keeps running totals
// per group: financing by country (split across a project's countries) and by
// entity (unsplit).

// Accumulator is an insertion-ordered keyed collection with insert-or-update
// semantics. Keys keep the order of their first Upsert.
type Accumulator[K comparable, V any] struct {
	keys  []K
	index map[K]*V
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator[K comparable, V any]() *Accumulator[K, V] {
	return &Accumulator[K, V]{index: make(map[K]*V)}
}

// Upsert returns the stored value for key, creating it with init on the first
// occurrence. The returned pointer stays valid for the life of the Accumulator,
// so callers merge into it in place.
func (a *Accumulator[K, V]) Upsert(key K, init func() V) *V {
	if v, ok := a.index[key]; ok {
		return v
	}
	v := new(V)
	if init != nil {
		*v = init()
	}
	a.index[key] = v
	a.keys = append(a.keys, key)
	return v
}

// Get returns the value stored for key.
func (a *Accumulator[K, V]) Get(key K) (*V, bool) {
	v, ok := a.index[key]
	return v, ok
}

// Len returns the number of keys.
func (a *Accumulator[K, V]) Len() int {
	return len(a.keys)
}

// Keys returns the keys in first-occurrence order.
func (a *Accumulator[K, V]) Keys() []K {
	return append([]K(nil), a.keys...)
}

// Values returns the stored values in first-occurrence order.
func (a *Accumulator[K, V]) Values() []*V {
	out := make([]*V, 0, len(a.keys))
	for _, k := range a.keys {
		out = append(out, a.index[k])
	}
	return out
}

// Each calls fn for every entry in first-occurrence order.
func (a *Accumulator[K, V]) Each(fn func(key K, value *V)) {
	for _, k := range a.keys {
		fn(k, a.index[k])
	}
}
