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

// Package reference resolves the lookup tables used to decode catalog
// titles: countries, languages, copyright and development status codes,
// system variants and video standards.
package reference

import (
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/ZaparooProject/go-datsig/pkg/assets"
	"github.com/spf13/afero"
)

// Data bundles every table a decoder needs. Build it once and share it; all
// tables are safe for concurrent use.
type Data struct {
	Countries   *Table
	Languages   *Table
	Copyright   *Dictionary
	Development *Dictionary
	Systems     *List
	Video       *List
}

// FromFs builds tables that read their text from dir on fs when first used.
func FromFs(fs afero.Fs, dir string) *Data {
	open := func(name string) Source {
		return func() (io.ReadCloser, error) {
			f, err := fs.Open(path.Join(dir, name))
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", name, err)
			}
			return f, nil
		}
	}

	return &Data{
		Countries:   NewTable("country", open(assets.CountryFile)),
		Languages:   NewTable("language", open(assets.LanguageFile)),
		Copyright:   NewDictionary("copyright", open(assets.CopyrightFile)),
		Development: NewDictionary("development status", open(assets.DevelopmentStatusFile)),
		Systems:     NewList("systems", open(assets.SystemsFile)),
		Video:       NewList("video", open(assets.VideoFile)),
	}
}

var (
	defaultData *Data
	defaultOnce sync.Once
)

// Default returns the tables bundled with the module.
func Default() *Data {
	defaultOnce.Do(func() {
		defaultData = FromFs(afero.FromIOFS{FS: assets.Reference}, assets.ReferenceDir)
	})
	return defaultData
}

// Validate loads every table and checks that all redirects resolve. It
// returns the first ErrInvalidReference found.
func (d *Data) Validate() error {
	for _, t := range []*Table{d.Countries, d.Languages} {
		items, err := t.Items()
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.Redirect == "" {
				continue
			}
			if _, _, err := t.Resolve(it.Code); err != nil {
				return err
			}
		}
	}
	return nil
}
