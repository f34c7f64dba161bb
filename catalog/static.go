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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Static holds the dataset fields shared by every generated dataset.
type Static struct {
	LicenseID           string `yaml:"license_id"`
	Methodology         string `yaml:"methodology"`
	DatasetSource       string `yaml:"dataset_source"`
	PackageCreator      string `yaml:"package_creator"`
	Private             bool   `yaml:"private"`
	Maintainer          string `yaml:"maintainer"`
	OwnerOrg            string `yaml:"owner_org"`
	DataUpdateFrequency int    `yaml:"data_update_frequency"`
}

// LoadStatic reads a static dataset YAML file.
func LoadStatic(path string) (Static, error) {
	var s Static
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading static dataset metadata: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing static dataset metadata %s: %w", path, err)
	}
	return s, nil
}

// Apply copies the static fields onto d, overwriting them.
func (s Static) Apply(d *Dataset) {
	d.LicenseID = s.LicenseID
	d.Methodology = s.Methodology
	d.DatasetSource = s.DatasetSource
	d.PackageCreator = s.PackageCreator
	d.Private = s.Private
	d.Maintainer = s.Maintainer
	d.OwnerOrg = s.OwnerOrg
	d.DataUpdateFrequency = s.DataUpdateFrequency
}
