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
	"regexp"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
	"github.com/OCHA-DAP/hdx-scraper-gcf/validators"
)

var iso3Pattern = regexp.MustCompile(`^[A-Z]{3}$`)

func activityChecks() *validators.TableValidator {
	return &validators.TableValidator{
		MinRecords:     1,
		RequiredFields: records.ActivityHeaders,
		FieldValidators: map[string]validators.FieldValidator{
			"Approval Date":   {DataType: validators.FieldTypeDate},
			"Completion Date": {DataType: validators.FieldTypeDate},
			"FA Financing":    {DataType: validators.FieldTypeFloat},
			"Project URL":     {DataType: validators.FieldTypeURL},
			"API URL":         {DataType: validators.FieldTypeURL},
		},
	}
}

func countryChecks() *validators.TableValidator {
	return &validators.TableValidator{
		MinRecords:     1,
		RequiredFields: records.CountryHeaders,
		FieldValidators: map[string]validators.FieldValidator{
			"ISO3":          {Pattern: iso3Pattern},
			"LDCs":          {AllowedValues: []string{"True", "False"}},
			"SIDS":          {AllowedValues: []string{"True", "False"}},
			"FA Financing":  {DataType: validators.FieldTypeFloat},
			"# FA":          {DataType: validators.FieldTypeInt},
			"Approval Date": {DataType: validators.FieldTypeDate},
		},
	}
}

func entityChecks() *validators.TableValidator {
	return &validators.TableValidator{
		MinRecords:     1,
		RequiredFields: records.EntityHeaders,
		FieldValidators: map[string]validators.FieldValidator{
			"DAE":           {AllowedValues: []string{records.DAETrue, records.DAEFalse}},
			"# Approved":    {DataType: validators.FieldTypeInt},
			"FA Financing":  {DataType: validators.FieldTypeFloat},
			"Approval Date": {DataType: validators.FieldTypeDate},
		},
	}
}

func readinessChecks() *validators.TableValidator {
	return &validators.TableValidator{
		MinRecords:     1,
		RequiredFields: records.ReadinessHeaders,
		FieldValidators: map[string]validators.FieldValidator{
			"Approval Date": {DataType: validators.FieldTypeDate},
			"Financing":     {DataType: validators.FieldTypeFloat},
		},
	}
}
