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

// Package config loads the scraper's project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/OCHA-DAP/hdx-scraper-gcf/output"
)

// Configuration validation errors.
var (
	ErrMissingBaseURL      = errors.New("base_url is required")
	ErrNoTags              = errors.New("at least one tag is required")
	ErrMissingTitle        = errors.New("title is required")
	ErrMissingResource     = errors.New("resource name is required")
	ErrInvalidOutputFormat = errors.New("output.formats must contain only 'csv' or 'parquet'")
	ErrMissingS3Bucket     = errors.New("output.s3.bucket is required when output.s3 is set")
	ErrInvalidBackend      = errors.New("catalog.backend must be one of: file, postgres, mongo")
	ErrMissingDSN          = errors.New("catalog.dsn is required for postgres and mongo")
	ErrInvalidRetries      = errors.New("fetch.retry_attempts must be non-negative")
	ErrInvalidTimeout      = errors.New("fetch.timeout_sec must be non-negative")
)

// Tables are the published tables, in generation order.
var Tables = []string{"activities", "countries", "entities", "readiness"}

// Catalog backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// Config is the project configuration. Per-table strings use flat keys such
// as title_activities and are read through Table.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Tags    []string      `yaml:"tags"`
	Output  OutputConfig  `yaml:"output"`
	Catalog CatalogConfig `yaml:"catalog"`
	Fetch   FetchConfig   `yaml:"fetch"`

	Extra map[string]interface{} `yaml:",inline"`
}

// OutputConfig selects where and in which formats tables are written.
type OutputConfig struct {
	Dir     string    `yaml:"dir"`
	Formats []string  `yaml:"formats"`
	S3      *S3Config `yaml:"s3"`
}

// S3Config uploads table files to a bucket instead of a local directory.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// CatalogConfig selects the catalog backend.
type CatalogConfig struct {
	Backend    string `yaml:"backend"`
	DSN        string `yaml:"dsn"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Path       string `yaml:"path"`
}

// FetchConfig tunes the API client.
type FetchConfig struct {
	TimeoutSec    int    `yaml:"timeout_sec"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryDelayMs  int    `yaml:"retry_delay_ms"`
	UserAgent     string `yaml:"user_agent"`
}

// Timeout returns the request timeout, or zero for the client default.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSec) * time.Second
}

// RetryDelay returns the initial retry delay.
func (f FetchConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelayMs) * time.Millisecond
}

// TableConfig holds the strings configured for one table.
type TableConfig struct {
	Title       string
	Resource    string
	Description string
	Caveats     string
	Notes       string
	HXLTags     map[string]string
}

// Load reads, defaults and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates configuration YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"csv"}
	}
	if c.Catalog.Backend == "" {
		c.Catalog.Backend = BackendFile
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "catalog"
	}
}

// Validate checks required keys and enumerations.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if len(c.Tags) == 0 {
		return ErrNoTags
	}
	for _, name := range Tables {
		t := c.Table(name)
		if t.Title == "" {
			return fmt.Errorf("%w: title_%s", ErrMissingTitle, name)
		}
		if t.Resource == "" {
			return fmt.Errorf("%w: resource_%s", ErrMissingResource, name)
		}
	}
	if _, err := c.Formats(); err != nil {
		return err
	}
	if c.Output.S3 != nil && c.Output.S3.Bucket == "" {
		return ErrMissingS3Bucket
	}
	switch c.Catalog.Backend {
	case BackendFile:
	case BackendPostgres, BackendMongo:
		if c.Catalog.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Catalog.Backend)
	}
	if c.Fetch.RetryAttempts < 0 {
		return ErrInvalidRetries
	}
	if c.Fetch.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Formats parses the configured output formats.
func (c *Config) Formats() ([]output.OutputFormat, error) {
	formats := make([]output.OutputFormat, 0, len(c.Output.Formats))
	for _, f := range c.Output.Formats {
		format, err := output.ParseFormat(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOutputFormat, f)
		}
		formats = append(formats, format)
	}
	return formats, nil
}

// Table returns the strings configured for a table such as "activities".
// Missing keys are empty.
func (c *Config) Table(name string) TableConfig {
	return TableConfig{
		Title:       c.String("title_" + name),
		Resource:    c.String("resource_" + name),
		Description: c.String("description_" + name),
		Caveats:     c.String("caveats_" + name),
		Notes:       c.String("notes_" + name),
		HXLTags:     c.stringMap("hxltags_" + name),
	}
}

// String returns a top-level string key, or "" when it is absent or not a string.
func (c *Config) String(key string) string {
	s, _ := c.Extra[key].(string)
	return strings.TrimSpace(s)
}

func (c *Config) stringMap(key string) map[string]string {
	raw, ok := c.Extra[key].(map[string]interface{})
	if !ok {
		return nil
	}
	m := make(map[string]string, len(raw))
	for k, v := range raw {
		m[k] = fmt.Sprint(v)
	}
	return m
}
