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
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync"

	"k8s.io/klog/v2"
)

// RetrieverOptions configures where payloads are saved and replayed from.
type RetrieverOptions struct {
	// SavedDir holds payloads written with Save and read with UseSaved.
	SavedDir string
	// FallbackDir keeps a copy of every successful download and is read when
	// a later download fails.
	FallbackDir string
	Save        bool
	UseSaved    bool
}

// Retriever is a read-through cache in front of a Fetcher. Each URL is fetched
// at most once per Retriever; later calls decode the cached bytes.
type Retriever struct {
	fetcher Fetcher
	opts    RetrieverOptions

	mu    sync.Mutex
	cache map[string][]byte
}

// NewRetriever wraps fetcher.
func NewRetriever(fetcher Fetcher, opts RetrieverOptions) *Retriever {
	return &Retriever{
		fetcher: fetcher,
		opts:    opts,
		cache:   make(map[string][]byte),
	}
}

// FileName returns the file a URL is saved under: its last path segment plus ".json".
func FileName(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	base := path.Base(name)
	if base == "" || base == "." || base == "/" {
		base = "download"
	}
	return base + ".json"
}

// DownloadJSON decodes the JSON document at rawURL into v.
func (r *Retriever) DownloadJSON(ctx context.Context, rawURL string, v interface{}) error {
	data, err := r.bytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &FetchError{Op: "decode", URL: rawURL, Err: err}
	}
	return nil
}

func (r *Retriever) bytes(ctx context.Context, rawURL string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[rawURL]; ok {
		return data, nil
	}

	data, err := r.load(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	r.cache[rawURL] = data
	return data, nil
}

func (r *Retriever) load(ctx context.Context, rawURL string) ([]byte, error) {
	log := klog.FromContext(ctx)
	name := FileName(rawURL)

	if r.opts.UseSaved {
		p := filepath.Join(r.opts.SavedDir, name)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, &FetchError{Op: "saved", URL: rawURL, Err: err}
		}
		if !json.Valid(data) {
			return nil, &FetchError{Op: "saved", URL: rawURL, Err: fmt.Errorf("%s: %w", p, ErrNotJSON)}
		}
		log.V(1).Info("using saved data", "url", rawURL, "path", p)
		return data, nil
	}

	data, err := r.fetcher.FetchJSON(ctx, rawURL)
	if err != nil {
		if fallback, ferr := r.readFallback(name); ferr == nil {
			log.Error(err, "download failed, using fallback copy", "url", rawURL, "dir", r.opts.FallbackDir)
			return fallback, nil
		}
		return nil, err
	}

	if r.opts.Save {
		if err := writeFile(r.opts.SavedDir, name, data); err != nil {
			return nil, fmt.Errorf("saving %s: %w", rawURL, err)
		}
	}
	if r.opts.FallbackDir != "" {
		if err := writeFile(r.opts.FallbackDir, name, data); err != nil {
			log.Error(err, "could not refresh fallback copy", "url", rawURL)
		}
	}
	return data, nil
}

func (r *Retriever) readFallback(name string) ([]byte, error) {
	if r.opts.FallbackDir == "" {
		return nil, errors.New("no fallback directory")
	}
	data, err := os.ReadFile(filepath.Join(r.opts.FallbackDir, name))
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, ErrNotJSON
	}
	return data, nil
}

func writeFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
