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
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogOptions configures the MongoDB catalog.
type MongoCatalogOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoCatalog stores one document per dataset, keyed by name.
type MongoCatalog struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoCatalog connects and ensures a unique index on name.
func NewMongoCatalog(ctx context.Context, opts MongoCatalogOptions) (*MongoCatalog, error) {
	if opts.URI == "" {
		return nil, &CatalogError{Op: "validate", Err: fmt.Errorf("mongo URI is required")}
	}
	if opts.Database == "" {
		opts.Database = "hdx"
	}
	if opts.Collection == "" {
		opts.Collection = "gcf_datasets"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URI).SetConnectTimeout(opts.Timeout))
	if err != nil {
		return nil, &CatalogError{Op: "connect", Err: err}
	}
	if err := client.Ping(cctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, &CatalogError{Op: "ping", Err: err}
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, &CatalogError{Op: "create_index", Err: err}
	}

	return &MongoCatalog{client: client, collection: coll, timeout: opts.Timeout}, nil
}

// upsertModel returns the filter and update document for ds.
func upsertModel(ds *Dataset, now time.Time) (bson.M, bson.M) {
	return bson.M{"name": ds.Name}, bson.M{
		"$set":         ds,
		"$currentDate": bson.M{"updated_at": true},
		"$setOnInsert": bson.M{"created_at": now},
	}
}

// Upsert implements Catalog.
func (m *MongoCatalog) Upsert(ctx context.Context, ds *Dataset) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	filter, update := upsertModel(ds, time.Now().UTC())
	if _, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return "", &CatalogError{Op: "upsert", Dataset: ds.Name, Err: err}
	}
	return ds.Name, nil
}

// Close implements Catalog.
func (m *MongoCatalog) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
