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

package records

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Country is one entry of a project's or readiness program's Countries list.
// ISO3 and CountryName are pointers because an entry may carry one without the
// other, and the activity table joins each list independently.
type Country struct {
	ISO3        *string `json:"ISO3,omitempty"`
	CountryName *string `json:"CountryName,omitempty"`
	Region      string  `json:"Region,omitempty"`
	LDCs        bool    `json:"LDCs,omitempty"`
	SIDS        bool    `json:"SIDS,omitempty"`
}

// Entity is an accredited entity listed on a project.
type Entity struct {
	Acronym string `json:"Acronym,omitempty"`
	Name    string `json:"Name,omitempty"`
	Access  string `json:"Access,omitempty"`
	Type    string `json:"Type,omitempty"`
	Sector  string `json:"Sector,omitempty"`
}

// ResultArea is a share of a project's impact, with Value such as "35.5%".
type ResultArea struct {
	Area  string `json:"Area,omitempty"`
	Value string `json:"Value,omitempty"`
}

// Project is a funded activity as returned by the /projects endpoint.
// Absent fields decode to their zero value.
type Project struct {
	ApprovedRef     string       `json:"ApprovedRef,omitempty"`
	ProjectName     *string      `json:"ProjectName,omitempty"`
	Entities        []Entity     `json:"Entities,omitempty"`
	Countries       []Country    `json:"Countries,omitempty"`
	BoardMeeting    string       `json:"BoardMeeting,omitempty"`
	Sector          string       `json:"Sector,omitempty"`
	Theme           string       `json:"Theme,omitempty"`
	Size            string       `json:"Size,omitempty"`
	ApprovalDate    string       `json:"ApprovalDate,omitempty"`
	DateCompletion  string       `json:"DateCompletion,omitempty"`
	RiskCategory    string       `json:"RiskCategory,omitempty"`
	TotalGCFFunding *float64     `json:"TotalGCFFunding,omitempty"`
	ResultAreas     []ResultArea `json:"ResultAreas,omitempty"`
	Status          string       `json:"Status,omitempty"`
	ProjectURL      string       `json:"ProjectURL,omitempty"`
	ProjectsID      FlexString   `json:"ProjectsID,omitempty"`
}

// Funding returns TotalGCFFunding, or 0 when it is absent.
func (p *Project) Funding() float64 {
	if p.TotalGCFFunding == nil {
		return 0
	}
	return *p.TotalGCFFunding
}

// Readiness is a readiness program as returned by /readinessProjects.
type Readiness struct {
	AgreementReference  *string   `json:"AgreementReference,omitempty"`
	Activity            *string   `json:"Activity,omitempty"`
	ProjectTitle        *string   `json:"ProjectTitle,omitempty"`
	Countries           []Country `json:"Countries,omitempty"`
	DeliveryPartner     *string   `json:"DeliveryPartner,omitempty"`
	Region              *string   `json:"Region,omitempty"`
	Status              *string   `json:"Status,omitempty"`
	AgreementSignedDate string    `json:"AgreementSignedDate,omitempty"`
	AmountApprovedInUSD *float64  `json:"AmountApprovedInUSD,omitempty"`
}

// FlexString decodes a JSON string or number into its textual form.
// The API returns numeric ids in some revisions and string ids in others.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the raw text.
func (f FlexString) String() string {
	return string(f)
}
