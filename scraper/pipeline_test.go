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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCHA-DAP/hdx-scraper-gcf/catalog"
	"github.com/OCHA-DAP/hdx-scraper-gcf/config"
	"github.com/OCHA-DAP/hdx-scraper-gcf/output"
	"github.com/OCHA-DAP/hdx-scraper-gcf/publish"
	"github.com/OCHA-DAP/hdx-scraper-gcf/readers"
)

const testConfig = `
base_url: "https://api.gcfund.org/v1/"
tags: ["climate-weather", "funding"]
title_activities: "GCF Funded Activities"
resource_activities: "GCF Funded Activities"
description_activities: "Funded activities"
caveats_activities: "activity caveats"
notes_activities: "activity notes"
title_countries: "GCF Funded Activities by Country"
resource_countries: "GCF Countries"
description_countries: "Per country"
title_entities: "GCF Accredited Entities"
resource_entities: "GCF Entities"
description_entities: "Per entity"
title_readiness: "GCF Readiness Programme"
resource_readiness: "GCF Readiness Activities"
description_readiness: "Readiness grants"
hxltags_countries:
  ISO3: "#country+code"
`

const projectsJSON = `[
  {"ApprovedRef":"FP099","ProjectName":"Water","TotalGCFFunding":200,"ApprovalDate":"2019-03-01T00:00:00Z",
   "Entities":[{"Acronym":"UNDP","Access":"International"}],
   "Countries":[{"ISO3":"KEN","CountryName":"Kenya","Region":"Africa","LDCs":false},{"ISO3":"UGA","CountryName":"Uganda","Region":"Africa","LDCs":true}],
   "ResultAreas":[{"Area":"Health","Value":"100%"}],"ProjectsID":99},
  {"ApprovedRef":"SAP010","TotalGCFFunding":50,"ApprovalDate":"2021-06-15T00:00:00Z",
   "Entities":[{"Acronym":"NIE","Access":"Direct"}],
   "Countries":[{"ISO3":"KEN","CountryName":"Kenya"}],"ProjectsID":"110"}
]`

const readinessJSON = `[
  {"AgreementReference":"KEN-RS-001","Countries":[{"CountryName":"Kenya"}],"AgreementSignedDate":"2016-05-04T00:00:00Z","AmountApprovedInUSD":300000}
]`

type mapDownloader struct {
	docs  map[string]string
	calls map[string]int
}

func (m *mapDownloader) DownloadJSON(ctx context.Context, url string, v interface{}) error {
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[url]++
	doc, ok := m.docs[url]
	if !ok {
		return fmt.Errorf("no document for %s", url)
	}
	return json.Unmarshal([]byte(doc), v)
}

type published struct {
	table publish.Table
	ds    catalog.Dataset
}

type recordingPublisher struct {
	calls []published
	fail  map[string]bool
}

func (r *recordingPublisher) Publish(ctx context.Context, table publish.Table, ds *catalog.Dataset) (*publish.Handle, error) {
	if r.fail[ds.Name] {
		return nil, errors.New("publish refused")
	}
	r.calls = append(r.calls, published{table: table, ds: *ds})
	return &publish.Handle{ID: ds.Name, Name: ds.Name}, nil
}

func (r *recordingPublisher) byName(name string) (published, bool) {
	for _, c := range r.calls {
		if c.ds.Name == name {
			return c, true
		}
	}
	return published{}, false
}

func newTestPipeline(t *testing.T, docs map[string]string, pub Publisher) (*Pipeline, *mapDownloader) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	dl := &mapDownloader{docs: docs}
	static := catalog.Static{LicenseID: "cc-by", Methodology: "Registry", DataUpdateFrequency: -2}
	return New(cfg, static, NewSource(dl, cfg.BaseURL), pub), dl
}

func defaultDocs() map[string]string {
	return map[string]string{
		"https://api.gcfund.org/v1/projects":          projectsJSON,
		"https://api.gcfund.org/v1/readinessProjects": readinessJSON,
	}
}

func TestPipeline_Run(t *testing.T) {
	pub := &recordingPublisher{}
	p, dl := newTestPipeline(t, defaultDocs(), pub)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Datasets, 6)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, 1, dl.calls["https://api.gcfund.org/v1/projects"], "projects are fetched once per run")

	activities, ok := pub.byName("gcf-funded-activities")
	require.True(t, ok)
	assert.Equal(t, "GCF Funded Activities.csv", activities.table.Filename)
	assert.Len(t, activities.table.Rows, 2)
	assert.Equal(t, "[2019-03-01T00:00:00 TO 2021-06-15T23:59:59]", activities.ds.DatasetDate)
	assert.Equal(t, []catalog.Group{{Name: "world"}}, activities.ds.Groups)
	assert.Equal(t, "activity caveats", activities.ds.Caveats)
	assert.Equal(t, "activity notes", activities.ds.Notes)
	assert.Equal(t, "cc-by", activities.ds.LicenseID)
	require.Len(t, activities.ds.Tags, 2)
	assert.Equal(t, TagVocabularyID, activities.ds.Tags[0].VocabularyID)

	countries, ok := pub.byName("gcf-funded-activities-by-country")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"ISO3": "#country+code"}, countries.table.HXLTags)
	require.Len(t, countries.table.Rows, 2)
	assert.Equal(t, "150", countries.table.Rows[0].Cell("FA Financing"))
	assert.Equal(t, "2", countries.table.Rows[0].Cell("# FA"))
	assert.Equal(t, "100", countries.table.Rows[1].Cell("FA Financing"))

	entities, ok := pub.byName("gcf-accredited-entities")
	require.True(t, ok)
	assert.Equal(t, "FALSE", entities.table.Rows[0].Cell("DAE"))
	assert.Equal(t, "TRUE", entities.table.Rows[1].Cell("DAE"))

	readiness, ok := pub.byName("gcf-readiness-programme")
	require.True(t, ok)
	assert.Equal(t, "[2016-05-04T00:00:00 TO 2016-05-04T23:59:59]", readiness.ds.DatasetDate)

	kenya, ok := pub.byName("kenya-gcf-funded-activities")
	require.True(t, ok)
	assert.Equal(t, "Kenya - GCF Funded Activities", kenya.ds.Title)
	assert.Equal(t, "kenya-gcf-funded-activities.csv", kenya.table.Filename)
	assert.Equal(t, "Funded activities in Kenya", kenya.table.Description)
	assert.Equal(t, "GCF Funded Activities", kenya.table.Name)
	assert.Equal(t, []catalog.Group{{Name: "ken"}}, kenya.ds.Groups)
	assert.Len(t, kenya.table.Rows, 2)

	uganda, ok := pub.byName("uganda-gcf-funded-activities")
	require.True(t, ok)
	assert.Len(t, uganda.table.Rows, 1)
	assert.Equal(t, "[2019-03-01T00:00:00 TO 2019-03-01T23:59:59]", uganda.ds.DatasetDate)
}

func TestPipeline_EmptyTableIsSkipped(t *testing.T) {
	docs := defaultDocs()
	docs["https://api.gcfund.org/v1/readinessProjects"] = `[]`
	pub := &recordingPublisher{}
	p, _ := newTestPipeline(t, docs, pub)

	h, err := p.GenerateReadinessDataset(context.Background())
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Empty(t, pub.calls)

	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"readiness"}, summary.Skipped)
}

func TestPipeline_FailuresAreJoined(t *testing.T) {
	docs := defaultDocs()
	delete(docs, "https://api.gcfund.org/v1/readinessProjects")
	pub := &recordingPublisher{fail: map[string]bool{"uganda-gcf-funded-activities": true}}
	p, _ := newTestPipeline(t, docs, pub)

	summary, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readiness")
	assert.Contains(t, err.Error(), "UGA")
	assert.Equal(t, []string{"readiness", "UGA"}, summary.Failed)
	assert.Len(t, summary.Datasets, 4)
}

func TestPipeline_CountryNameFallsBackToCode(t *testing.T) {
	docs := defaultDocs()
	docs["https://api.gcfund.org/v1/projects"] = `[{"ApprovedRef":"FP1","Countries":[{"ISO3":"XKX"}]}]`
	pub := &recordingPublisher{}
	p, _ := newTestPipeline(t, docs, pub)

	groups, err := p.ActivitiesByCountry(context.Background())
	require.NoError(t, err)
	rows, ok := groups.Get("XKX")
	require.True(t, ok)

	_, err = p.GenerateActivitiesByCountryDataset(context.Background(), "XKX", *rows)
	require.NoError(t, err)
	_, ok = pub.byName("xkx-gcf-funded-activities")
	assert.True(t, ok)

	h, err := p.GenerateActivitiesByCountryDataset(context.Background(), "KEN", nil)
	assert.NoError(t, err)
	assert.Nil(t, h)
}

// End to end through the real retriever, publisher and file catalog.
func TestPipeline_PublishesFiles(t *testing.T) {
	saved := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(saved, "projects.json"), []byte(projectsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(saved, "readinessProjects.json"), []byte(readinessJSON), 0o644))

	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	retriever := readers.NewRetriever(readers.NewHTTPFetcher(), readers.RetrieverOptions{SavedDir: saved, UseSaved: true})
	outDir := t.TempDir()
	cat := &catalog.FileCatalog{Dir: filepath.Join(outDir, "catalog")}
	pub := publish.NewPublisher(output.FileLocation{Dir: outDir}, cat)

	p := New(cfg, catalog.Static{LicenseID: "cc-by"}, NewSource(retriever, cfg.BaseURL), pub)
	summary, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, summary.Datasets, 6)

	for _, name := range []string{
		"GCF Funded Activities.csv", "GCF Countries.csv", "GCF Entities.csv",
		"GCF Readiness Activities.csv", "kenya-gcf-funded-activities.csv", "uganda-gcf-funded-activities.csv",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(cat.Path("kenya-gcf-funded-activities"))
	assert.NoError(t, err)
}

func TestPipeline_CountryRowsMustMatchGrouping(t *testing.T) {
	pub := &recordingPublisher{}
	p, _ := newTestPipeline(t, defaultDocs(), pub)

	groups, err := p.ActivitiesByCountry(context.Background())
	require.NoError(t, err)
	kenya, ok := groups.Get("KEN")
	require.True(t, ok)
	uganda, ok := groups.Get("UGA")
	require.True(t, ok)

	h, err := p.GenerateActivitiesByCountryDataset(context.Background(), "KEN", *kenya)
	require.NoError(t, err)
	require.NotNil(t, h)
	got, ok := pub.byName("kenya-gcf-funded-activities")
	require.True(t, ok)
	require.Len(t, got.table.Rows, 2)
	assert.Equal(t, "FP099", got.table.Rows[0].Cell("Ref #"))
	assert.Equal(t, "SAP010", got.table.Rows[1].Cell("Ref #"))

	_, err = p.GenerateActivitiesByCountryDataset(context.Background(), "KEN", *uganda)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEN")
	assert.Len(t, pub.calls, 1)
}
