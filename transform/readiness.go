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

package transform

import (
	"context"
	"fmt"

	"github.com/OCHA-DAP/hdx-scraper-gcf/records"
)

// ReadinessRows maps each readiness program onto one row, keeping input order.
// Only the first listed country is used.
func ReadinessRows(ctx context.Context, programs []records.Readiness) ([]*records.ReadinessRow, error) {
	rows := make([]*records.ReadinessRow, 0, len(programs))
	for i := range programs {
		r := &programs[i]
		signed, err := records.ParseTimestamp(r.AgreementSignedDate)
		if err != nil {
			return nil, fmt.Errorf("readiness %q agreement signed date: %w", deref(r.AgreementReference), err)
		}

		var country *string
		if len(r.Countries) > 0 {
			country = r.Countries[0].CountryName
		}

		rows = append(rows, &records.ReadinessRow{
			Ref:             r.AgreementReference,
			Activity:        r.Activity,
			ProjectTitle:    r.ProjectTitle,
			Country:         country,
			DeliveryPartner: r.DeliveryPartner,
			Region:          r.Region,
			Status:          r.Status,
			ApprovalDate:    signed,
			Financing:       r.AmountApprovedInUSD,
		})
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
