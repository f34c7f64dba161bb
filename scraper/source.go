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

package scraper

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/klog/v2"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// Downloader decodes the JSON document at a URL. readers.Retriever implements it.
type Downloader interface {
	DownloadJSON(ctx context.Context, url string, v interface{}) error
}

// Source fetches the two GCF collections once per run.
type Source struct {
	downloader Downloader
	baseURL    string

	mu        sync.Mutex
	projects  []records.Project
	readiness []records.Readiness
	gotP      bool
	gotR      bool
}

// NewSource reads collections below baseURL, e.g. "https://api.gcfund.org/v1".
func NewSource(d Downloader, baseURL string) *Source {
	return &Source{downloader: d, baseURL: baseURL}
}

// ProjectsURL is the funded activities endpoint.
func (s *Source) ProjectsURL() string { return s.baseURL + "/projects" }

// ReadinessURL is the readiness programme endpoint.
func (s *Source) ReadinessURL() string { return s.baseURL + "/readinessProjects" }

// Projects returns the funded projects.
func (s *Source) Projects(ctx context.Context) ([]records.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gotP {
		return s.projects, nil
	}
	var projects []records.Project
	if err := s.downloader.DownloadJSON(ctx, s.ProjectsURL(), &projects); err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}
	klog.FromContext(ctx).V(1).Info("fetched projects", "count", len(projects))
	s.projects, s.gotP = projects, true
	return projects, nil
}

// Readiness returns the readiness programmes.
func (s *Source) Readiness(ctx context.Context) ([]records.Readiness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gotR {
		return s.readiness, nil
	}
	var programs []records.Readiness
	if err := s.downloader.DownloadJSON(ctx, s.ReadinessURL(), &programs); err != nil {
		return nil, fmt.Errorf("fetching readiness projects: %w", err)
	}
	klog.FromContext(ctx).V(1).Info("fetched readiness projects", "count", len(programs))
	s.readiness, s.gotR = programs, true
	return programs, nil
}
