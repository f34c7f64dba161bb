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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OCHA-DAP/hdx-scraper-gcf/writers"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Print the row count and schema of published Parquet tables",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, argv []string) error {
		out := cmd.OutOrStdout()
		for _, path := range argv {
			s, err := writers.InspectParquetFile(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d rows in %d row groups\n", path, s.Rows, len(s.RowGroups))
			for i, name := range s.Columns {
				fmt.Fprintf(out, "  %-40s %s\n", name, s.Types[i])
			}
			fmt.Fprintln(out, strings.Repeat("-", 48))
		}
		return nil
	},
}

func init() {
	Cmd.AddCommand(inspectCmd)
}
