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
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresCatalogOptions configures the PostgreSQL catalog.
type PostgresCatalogOptions struct {
	DSN             string
	DatasetTable    string
	ResourceTable   string
	CreateTables    bool
	QueryTimeout    time.Duration
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// PostgresCatalogOption is a functional option.
type PostgresCatalogOption func(*PostgresCatalogOptions)

// WithPostgresDSN sets the connection string.
func WithPostgresDSN(dsn string) PostgresCatalogOption {
	return func(opts *PostgresCatalogOptions) {
		opts.DSN = dsn
	}
}

// WithTables sets the dataset and resource table names.
func WithTables(datasets, resources string) PostgresCatalogOption {
	return func(opts *PostgresCatalogOptions) {
		opts.DatasetTable = datasets
		opts.ResourceTable = resources
	}
}

// WithCreateTables creates the tables on open when they do not exist.
func WithCreateTables(create bool) PostgresCatalogOption {
	return func(opts *PostgresCatalogOptions) {
		opts.CreateTables = create
	}
}

// WithPostgresQueryTimeout bounds each upsert.
func WithPostgresQueryTimeout(timeout time.Duration) PostgresCatalogOption {
	return func(opts *PostgresCatalogOptions) {
		opts.QueryTimeout = timeout
	}
}

func defaultPostgresOptions() PostgresCatalogOptions {
	return PostgresCatalogOptions{
		DatasetTable:    "gcf_datasets",
		ResourceTable:   "gcf_resources",
		CreateTables:    true,
		QueryTimeout:    30 * time.Second,
		MaxOpenConns:    4,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// PostgresCatalog stores datasets in one table (full metadata as JSONB) and
// their resources in a child table. The id is the dataset name.
type PostgresCatalog struct {
	db   *sql.DB
	opts PostgresCatalogOptions
	stmt postgresStatements
}

type postgresStatements struct {
	createDatasets  string
	createResources string
	upsertDataset   string
	deleteResources string
	insertResource  string
}

// NewPostgresCatalog connects with lib/pq and prepares the tables.
func NewPostgresCatalog(ctx context.Context, opts ...PostgresCatalogOption) (*PostgresCatalog, error) {
	options := defaultPostgresOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.DSN == "" {
		return nil, &CatalogError{Op: "validate", Err: fmt.Errorf("postgres DSN is required")}
	}

	db, err := sql.Open("postgres", options.DSN)
	if err != nil {
		return nil, &CatalogError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(options.MaxOpenConns)
	db.SetConnMaxLifetime(options.ConnMaxLifetime)

	c, err := newPostgresCatalog(ctx, db, options)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func newPostgresCatalog(ctx context.Context, db *sql.DB, options PostgresCatalogOptions) (*PostgresCatalog, error) {
	c := &PostgresCatalog{db: db, opts: options, stmt: buildPostgresStatements(options)}

	ctx, cancel := context.WithTimeout(ctx, options.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, &CatalogError{Op: "ping", Err: err}
	}
	if options.CreateTables {
		for _, q := range []string{c.stmt.createDatasets, c.stmt.createResources} {
			if _, err := db.ExecContext(ctx, q); err != nil {
				return nil, &CatalogError{Op: "create_table", Err: err}
			}
		}
	}
	return c, nil
}

func buildPostgresStatements(o PostgresCatalogOptions) postgresStatements {
	ds := pq.QuoteIdentifier(o.DatasetTable)
	rs := pq.QuoteIdentifier(o.ResourceTable)
	return postgresStatements{
		createDatasets: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	dataset_date TEXT,
	metadata JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, ds),
		createResources: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	dataset_name TEXT NOT NULL REFERENCES %s(name) ON DELETE CASCADE,
	name TEXT NOT NULL,
	format TEXT NOT NULL,
	description TEXT,
	url TEXT,
	PRIMARY KEY (dataset_name, name, format)
)`, rs, ds),
		upsertDataset: fmt.Sprintf(`INSERT INTO %s (name, title, dataset_date, metadata, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (name) DO UPDATE SET title = EXCLUDED.title, dataset_date = EXCLUDED.dataset_date,
	metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`, ds),
		deleteResources: fmt.Sprintf(`DELETE FROM %s WHERE dataset_name = $1`, rs),
		insertResource: fmt.Sprintf(`INSERT INTO %s (dataset_name, name, format, description, url)
VALUES ($1, $2, $3, $4, $5)`, rs),
	}
}

// Upsert implements Catalog. The dataset row and its resources are replaced
// in one transaction.
func (c *PostgresCatalog) Upsert(ctx context.Context, ds *Dataset) (string, error) {
	metadata, err := json.Marshal(ds)
	if err != nil {
		return "", &CatalogError{Op: "marshal", Dataset: ds.Name, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.QueryTimeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return "", &CatalogError{Op: "begin", Dataset: ds.Name, Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, c.stmt.upsertDataset, ds.Name, ds.Title, nullString(ds.DatasetDate), string(metadata)); err != nil {
		return "", &CatalogError{Op: "upsert_dataset", Dataset: ds.Name, Err: err}
	}
	if _, err := tx.ExecContext(ctx, c.stmt.deleteResources, ds.Name); err != nil {
		return "", &CatalogError{Op: "delete_resources", Dataset: ds.Name, Err: err}
	}
	for _, r := range ds.Resources {
		if _, err := tx.ExecContext(ctx, c.stmt.insertResource, ds.Name, r.Name, r.Format, r.Description, nullString(r.URL)); err != nil {
			return "", &CatalogError{Op: "insert_resource", Dataset: ds.Name, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", &CatalogError{Op: "commit", Dataset: ds.Name, Err: err}
	}
	return ds.Name, nil
}

// Close implements Catalog.
func (c *PostgresCatalog) Close(ctx context.Context) error {
	return c.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
