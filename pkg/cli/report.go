// go-datsig
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-datsig.
//
// go-datsig is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-datsig is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-datsig.  If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/ZaparooProject/go-datsig/pkg/datfile"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Report is everything one run produced.
type Report struct {
	Catalogs []*signature.Catalog `json:"Catalogs"`
	Errors   []ReportError        `json:"Errors,omitempty"`
	Scan     []ScanEntry          `json:"Scan,omitempty"`
}

type ReportError struct {
	Path  string `json:"Path"`
	Error string `json:"Error"`
}

type ScanEntry struct {
	Path    string      `json:"Path"`
	Crc     string      `json:"Crc"`
	Md5     string      `json:"Md5"`
	Sha1    string      `json:"Sha1"`
	Matches []ScanMatch `json:"Matches"`
	Size    int64       `json:"Size"`
}

type ScanMatch struct {
	Catalog string `json:"Catalog"`
	Game    string `json:"Game"`
	Rom     string `json:"Rom"`
	By      string `json:"By"`
}

// NewReport collects loaded catalogs, load failures and scan results.
func NewReport(results []datfile.Result, scan []ScanResult) *Report {
	r := &Report{Catalogs: []*signature.Catalog{}}
	for _, res := range results {
		if res.Err != nil {
			r.Errors = append(r.Errors, ReportError{Path: res.Path, Error: res.Err.Error()})
			continue
		}
		r.Catalogs = append(r.Catalogs, res.Catalog)
	}
	for _, s := range scan {
		e := ScanEntry{
			Path:    s.Path,
			Crc:     s.Hashes.CRC32,
			Md5:     s.Hashes.MD5,
			Sha1:    s.Hashes.SHA1,
			Size:    s.Hashes.Size,
			Matches: make([]ScanMatch, 0, len(s.Matches)),
		}
		for _, m := range s.Matches {
			e.Matches = append(e.Matches, ScanMatch{
				Catalog: m.Catalog.Name,
				Game:    m.Game.Name,
				Rom:     m.Rom.Name,
				By:      m.By,
			})
		}
		r.Scan = append(r.Scan, e)
	}
	return r
}

// WriteJSON writes the report as JSON, indented when pretty is set.
func (r *Report) WriteJSON(w io.Writer, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteTable writes a summary of the report as text tables.
func (r *Report) WriteTable(w io.Writer) error {
	rows := make([][]string, 0, len(r.Catalogs))
	for _, c := range r.Catalogs {
		rows = append(rows, []string{
			c.SourceType.String(),
			c.Name,
			c.Version,
			strconv.Itoa(len(c.Games)),
			strconv.Itoa(c.RomCount()),
		})
	}
	out := renderTable(
		[]string{"Dialect", "Name", "Version", "Games", "Roms"},
		rows,
		[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignRight, text.AlignRight},
	)

	if len(r.Errors) > 0 {
		rows = rows[:0]
		for _, e := range r.Errors {
			rows = append(rows, []string{e.Path, e.Error})
		}
		out += "\n" + renderTable([]string{"File", "Error"}, rows, nil)
	}

	if len(r.Scan) > 0 {
		rows = rows[:0]
		for _, s := range r.Scan {
			if len(s.Matches) == 0 {
				rows = append(rows, []string{s.Path, "", "", "", ""})
				continue
			}
			for _, m := range s.Matches {
				rows = append(rows, []string{s.Path, m.Catalog, m.Game, m.Rom, m.By})
			}
		}
		out += "\n" + renderTable([]string{"File", "Catalog", "Game", "Rom", "By"}, rows, nil)
	}

	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderTable(headers []string, rows [][]string, aligns []text.Align) string {
	columns := len(headers)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
