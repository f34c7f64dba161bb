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

package output

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCHA-DAP/hdx-scraper-gcf/core"
)

type fakeS3 struct {
	objects      map[string][]byte
	contentTypes map[string]string
	err          error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	f.objects[key] = data
	f.contentTypes[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, ".csv", f.Extension())

	f, err = ParseFormat("parquet")
	require.NoError(t, err)
	assert.Equal(t, "parquet", f.String())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestFileLocation_NewSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	loc := FileLocation{Dir: dir}

	sink, err := NewSink(context.Background(), loc, SinkConfig{
		Format:   FormatCSV,
		Filename: "gcf-countries.csv",
		Headers:  []string{"ISO3", "# FA"},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), core.Record{"ISO3": "KEN", "# FA": 2}))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(filepath.Join(dir, "gcf-countries.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ISO3,# FA\r\nKEN,2\r\n", string(data))
	assert.Equal(t, filepath.Join(dir, "gcf-countries.csv"), loc.URL("gcf-countries.csv"))
}

func TestS3Location_UploadsOnClose(t *testing.T) {
	fake := newFakeS3()
	loc := &S3Location{Bucket: "hdx", Prefix: "/gcf/", Client: fake}

	assert.Equal(t, "gcf/table.csv", loc.Key("table.csv"))
	assert.Equal(t, "s3://hdx/gcf/table.csv", loc.URL("table.csv"))

	sink, err := NewSink(context.Background(), loc, SinkConfig{
		Format:   FormatCSV,
		Filename: "table.csv",
		Headers:  []string{"a"},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), core.Record{"a": "x"}))
	assert.Empty(t, fake.objects, "nothing is uploaded before close")

	require.NoError(t, sink.Close())
	assert.Equal(t, "a\r\nx\r\n", string(fake.objects["hdx/gcf/table.csv"]))
	assert.Equal(t, "text/csv", fake.contentTypes["hdx/gcf/table.csv"])
}

func TestS3Location_Parquet(t *testing.T) {
	fake := newFakeS3()
	loc := &S3Location{Bucket: "hdx", Client: fake}

	sink, err := NewSink(context.Background(), loc, SinkConfig{
		Format:   FormatParquet,
		Filename: "table.parquet",
		Headers:  []string{"a"},
	})
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), core.Record{"a": "x"}))
	require.NoError(t, sink.Close())

	assert.NotEmpty(t, fake.objects["hdx/table.parquet"])
	assert.Equal(t, "application/vnd.apache.parquet", fake.contentTypes["hdx/table.parquet"])
}

func TestS3Location_UploadError(t *testing.T) {
	fake := newFakeS3()
	fake.err = assert.AnError
	loc := &S3Location{Bucket: "hdx", Client: fake}

	w, err := loc.Create(context.Background(), "t.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("a\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, w.Close(), assert.AnError)
}

func TestNewS3Location_RequiresBucket(t *testing.T) {
	_, err := NewS3Location(context.Background(), S3Options{})
	assert.Error(t, err)
}
