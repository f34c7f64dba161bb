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

package writers

import (
	"context"
	"fmt"
	"sync"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

// RecordCollector implements core.DataSink by keeping records in memory.
type RecordCollector struct {
	mu      sync.Mutex
	records []core.Record
	closed  bool
}

// NewRecordCollector returns an empty collector.
func NewRecordCollector() *RecordCollector {
	return &RecordCollector{}
}

// Write implements core.DataSink.
func (c *RecordCollector) Write(ctx context.Context, record core.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("collector is closed")
	}
	c.records = append(c.records, record)
	return nil
}

// Flush implements core.DataSink.
func (c *RecordCollector) Flush() error { return nil }

// Close implements core.DataSink. Records stay readable after Close.
func (c *RecordCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Records returns the collected records in write order.
func (c *RecordCollector) Records() []core.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Record(nil), c.records...)
}
