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

package readers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"k8s.io/klog/v2"
)

// Package readers retrieves the raw JSON collections from the GCF API and
// feeds rendered rows into the publish pipeline.

// FetchError provides structured error information for fetch operations.
type FetchError struct {
	Op         string // "create_request", "request", "status_check", "read_response", "parse", "saved", "decode"
	StatusCode int    // HTTP status code if applicable
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s [%d] %s: %v", e.Op, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrNotJSON is wrapped by a FetchError when the body is not valid JSON.
var ErrNotJSON = errors.New("response is not valid JSON")

// Fetcher retrieves a JSON document.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcherStats holds request statistics.
type HTTPFetcherStats struct {
	RequestCount  int64
	RetryCount    int64
	RateLimitHits int64
	BytesRead     int64
	ResponseTimes []time.Duration
}

// HTTPFetcherOptions configures the HTTP fetcher.
type HTTPFetcherOptions struct {
	Headers          map[string]string
	Timeout          time.Duration
	RetryAttempts    int
	RetryDelay       time.Duration
	MaxResponseSize  int64
	ValidStatusCodes []int
	UserAgent        string
	CustomClient     *http.Client
}

// FetcherOptionHTTP is a functional option for HTTPFetcherOptions.
type FetcherOptionHTTP func(*HTTPFetcherOptions)

func WithHTTPHeaders(headers map[string]string) FetcherOptionHTTP {
	return func(opts *HTTPFetcherOptions) {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		for k, v := range headers {
			opts.Headers[k] = v
		}
	}
}

func WithHTTPTimeout(timeout time.Duration) FetcherOptionHTTP {
	return func(opts *HTTPFetcherOptions) {
		opts.Timeout = timeout
	}
}

func WithHTTPRetries(attempts int, delay time.Duration) FetcherOptionHTTP {
	return func(opts *HTTPFetcherOptions) {
		opts.RetryAttempts = attempts
		opts.RetryDelay = delay
	}
}

func WithHTTPUserAgent(userAgent string) FetcherOptionHTTP {
	return func(opts *HTTPFetcherOptions) {
		opts.UserAgent = userAgent
	}
}

func WithHTTPClient(client *http.Client) FetcherOptionHTTP {
	return func(opts *HTTPFetcherOptions) {
		opts.CustomClient = client
	}
}

// HTTPFetcher GETs JSON documents, retrying rate limits and server errors with
// exponential backoff.
type HTTPFetcher struct {
	client *http.Client
	opts   *HTTPFetcherOptions
	stats  HTTPFetcherStats
}

// NewHTTPFetcher creates a fetcher with the given options.
func NewHTTPFetcher(options ...FetcherOptionHTTP) *HTTPFetcher {
	opts := &HTTPFetcherOptions{
		Headers:          make(map[string]string),
		Timeout:          60 * time.Second,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		MaxResponseSize:  200 * 1024 * 1024,
		ValidStatusCodes: []int{http.StatusOK},
		UserAgent:        "hdx-scraper-gcf",
	}
	for _, option := range options {
		option(opts)
	}

	client := opts.CustomClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPFetcher{client: client, opts: opts}
}

// Stats returns request statistics.
func (f *HTTPFetcher) Stats() HTTPFetcherStats {
	return f.stats
}

// FetchJSON implements Fetcher. The body is returned only if it is valid JSON.
func (f *HTTPFetcher) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	data, err := f.executeWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, &FetchError{Op: "parse", URL: url, Err: ErrNotJSON}
	}
	return data, nil
}

func (f *HTTPFetcher) executeWithRetry(ctx context.Context, url string) ([]byte, error) {
	log := klog.FromContext(ctx)
	var lastErr error

	for attempt := 0; attempt <= f.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := f.opts.RetryDelay * time.Duration(1<<uint(attempt-1))
			log.Info("retrying request", "url", url, "attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			f.stats.RetryCount++
		}

		data, err := f.execute(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			if fetchErr.StatusCode == http.StatusTooManyRequests {
				f.stats.RateLimitHits++
				continue
			}
			if fetchErr.StatusCode >= 500 || fetchErr.Op == "request" {
				continue
			}
			// other 4xx are not retried
			break
		}
	}

	return nil, lastErr
}

func (f *HTTPFetcher) execute(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Op: "create_request", URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range f.opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "request", URL: url, Err: err}
	}
	defer resp.Body.Close()

	f.stats.RequestCount++
	f.stats.ResponseTimes = append(f.stats.ResponseTimes, time.Since(start))

	if !f.isValidStatusCode(resp.StatusCode) {
		return nil, &FetchError{
			Op:         "status_check",
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxResponseSize))
	if err != nil {
		return nil, &FetchError{Op: "read_response", URL: url, Err: err}
	}
	f.stats.BytesRead += int64(len(data))
	return data, nil
}

func (f *HTTPFetcher) isValidStatusCode(statusCode int) bool {
	for _, code := range f.opts.ValidStatusCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}
