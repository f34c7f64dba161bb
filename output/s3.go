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
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutAPI is the part of the S3 client used for uploads.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3Location.
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // S3-compatible services
	AccessKeyID     string
	SecretAccessKey string
}

// S3Location uploads table files to a bucket. Files are buffered in memory and
// uploaded when the writer is closed.
type S3Location struct {
	Bucket string
	Prefix string
	Client S3PutAPI
}

// NewS3Location builds a client from the default AWS config chain, overridden
// by any region, endpoint or static keys in opts.
func NewS3Location(ctx context.Context, opts S3Options) (*S3Location, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Location{Bucket: opts.Bucket, Prefix: opts.Prefix, Client: client}, nil
}

// Key returns the object key for a file name.
func (s *S3Location) Key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(strings.Trim(s.Prefix, "/"), name)
}

// Create implements Location.
func (s *S3Location) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return &s3WriteCloser{
		ctx:    ctx,
		buf:    &bytes.Buffer{},
		client: s.Client,
		bucket: s.Bucket,
		key:    s.Key(name),
	}, nil
}

// URL implements Location.
func (s *S3Location) URL(name string) string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key(name))
}

type s3WriteCloser struct {
	ctx    context.Context
	buf    *bytes.Buffer
	client S3PutAPI
	bucket string
	key    string
	closed bool
}

func (w *s3WriteCloser) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *s3WriteCloser) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(w.key),
		Body:        bytes.NewReader(w.buf.Bytes()),
		ContentType: aws.String(contentType(w.key)),
	})
	if err != nil {
		return fmt.Errorf("uploading s3://%s/%s: %w", w.bucket, w.key, err)
	}
	return nil
}

func contentType(key string) string {
	switch path.Ext(key) {
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}
