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

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// FileCatalog writes each dataset to <Dir>/<name>.json. The id is the name.
type FileCatalog struct {
	Dir string
}

// Upsert implements Catalog.
func (f *FileCatalog) Upsert(ctx context.Context, ds *Dataset) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", &CatalogError{Op: "mkdir", Dataset: ds.Name, Err: err}
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", &CatalogError{Op: "marshal", Dataset: ds.Name, Err: err}
	}
	if err := os.WriteFile(f.Path(ds.Name), append(data, '\n'), 0o644); err != nil {
		return "", &CatalogError{Op: "write", Dataset: ds.Name, Err: err}
	}
	return ds.Name, nil
}

// Path returns the file a dataset is stored in.
func (f *FileCatalog) Path(name string) string {
	return filepath.Join(f.Dir, name+".json")
}

// Close implements Catalog.
func (f *FileCatalog) Close(ctx context.Context) error {
	return nil
}
