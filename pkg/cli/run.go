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
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZaparooProject/go-datsig/pkg/config"
	"github.com/ZaparooProject/go-datsig/pkg/datfile"
	"github.com/ZaparooProject/go-datsig/pkg/dialects"
	"github.com/ZaparooProject/go-datsig/pkg/index"
	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrNoInput is returned when no catalog paths were given.
var ErrNoInput = errors.New("no catalog files given")

// ErrLoadFailed is returned after the report is written when one or more
// catalogs could not be loaded.
var ErrLoadFailed = errors.New("some catalogs failed to load")

// Runner parses catalogs and writes a report.
type Runner struct {
	Fs     afero.Fs
	Stdout io.Writer
	Cfg    *config.Instance
	// Refs defaults to the bundled reference tables.
	Refs *reference.Data
	// OnCatalogError is called for each catalog that failed to load. The
	// dialect is empty when the failure came before a decoder was chosen.
	OnCatalogError func(path string, dialect signature.Dialect, err error)
	// Dialect forces every catalog to decode as this dialect.
	Dialect signature.Dialect
}

// Run loads every catalog in paths, directories included, optionally
// scans the configured ROM directory against them and writes the report.
func (r *Runner) Run(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return ErrNoInput
	}

	refs := r.Refs
	if refs == nil {
		refs = reference.Default()
	}
	if err := refs.Validate(); err != nil {
		return fmt.Errorf("reference tables are broken: %w", err)
	}

	files, err := datfile.Expand(r.Fs, paths)
	if err != nil {
		return fmt.Errorf("failed to list catalogs: %w", err)
	}

	loader := datfile.NewLoader(r.Fs, datfile.Options{
		Refs:         refs,
		CompanionDir: r.Cfg.CompanionDBDir(),
		Dialect:      r.Dialect,
		Allow:        r.Cfg.Dialects(),
		Workers:      r.Cfg.Workers(),
	})
	results, err := loader.LoadAll(ctx, files)
	if err != nil {
		return fmt.Errorf("failed to load catalogs: %w", err)
	}
	r.reportFailures(results)

	var scan []ScanResult
	if root := r.Cfg.RomsDir(); root != "" {
		idx := index.New()
		for _, res := range results {
			if res.Catalog != nil {
				idx.Add(res.Catalog)
			}
		}
		catalogs, roms := idx.Stats()
		log.Info().Int("catalogs", catalogs).Int("roms", roms).Msg("built checksum index")

		scan, err = Scan(ctx, r.Fs, idx, root, r.Cfg.Workers(), r.Cfg.FollowSymlinks())
		if err != nil {
			return err
		}
	}

	report := NewReport(results, scan)
	if err := r.write(report); err != nil {
		return err
	}

	if len(report.Errors) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrLoadFailed, len(report.Errors), len(results))
	}
	return nil
}

func (r *Runner) reportFailures(results []datfile.Result) {
	if r.OnCatalogError == nil {
		return
	}
	for _, res := range results {
		if res.Err == nil {
			continue
		}
		dialect, ok := dialects.FailedDialect(res.Err)
		if !ok {
			dialect = r.Dialect
		}
		r.OnCatalogError(res.Path, dialect, res.Err)
	}
}

func (r *Runner) write(report *Report) error {
	w := r.Stdout
	if p := r.Cfg.OutputPath(); p != "" {
		if err := r.Fs.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := r.Fs.Create(p)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Error().Err(err).Str("path", p).Msg("failed to close output file")
			}
		}()
		w = f
	}

	if r.Cfg.OutputFormat() == config.FormatTable {
		return report.WriteTable(w)
	}
	return report.WriteJSON(w, r.Cfg.OutputPretty())
}
