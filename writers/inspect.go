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
	"fmt"
	"os"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
)

// ParquetSummary describes a written Parquet table.
type ParquetSummary struct {
	Rows      int64
	RowGroups []int64
	Columns   []string
	Types     []string
}

// InspectParquet reads the footer and Arrow schema of a Parquet file.
func InspectParquet(r parquet.ReaderAtSeeker) (*ParquetSummary, error) {
	reader, err := file.NewParquetReader(r)
	if err != nil {
		return nil, &ParquetWriterError{Op: "inspect", Err: err}
	}
	defer reader.Close()

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, &ParquetWriterError{Op: "inspect", Err: err}
	}
	schema, err := arrowReader.Schema()
	if err != nil {
		return nil, &ParquetWriterError{Op: "inspect", Err: err}
	}

	s := &ParquetSummary{Rows: reader.NumRows()}
	for i := 0; i < reader.NumRowGroups(); i++ {
		s.RowGroups = append(s.RowGroups, reader.RowGroup(i).NumRows())
	}
	for _, f := range schema.Fields() {
		s.Columns = append(s.Columns, f.Name)
		s.Types = append(s.Types, f.Type.String())
	}
	return s, nil
}

// InspectParquetFile is InspectParquet over a file path.
func InspectParquetFile(path string) (*ParquetSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return InspectParquet(f)
}
