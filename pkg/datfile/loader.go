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

// Package datfile loads catalog files from a filesystem: it undoes gzip,
// zstd and zip compression, hashes the catalog bytes, finds No-Intro
// database exports next to their DATs and decodes many files in parallel.
package datfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/dialects"
	"github.com/ZaparooProject/go-datsig/pkg/hasher"
	"github.com/ZaparooProject/go-datsig/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

const DefaultWorkers = 4

type Options struct {
	Refs *reference.Data
	// CompanionDir is searched for database exports after the catalog's own
	// directory.
	CompanionDir string
	Dialect      signature.Dialect
	Allow        []signature.Dialect
	Workers      int
}

// Loader reads catalogs from fs. It is safe for concurrent use; database
// exports are parsed once and shared between catalogs.
type Loader struct {
	fs         afero.Fs
	companions map[string]*dialects.Companion
	opts       Options
	mu         syncutil.Mutex
}

//nolint:gocritic // options copied so callers can reuse them
func NewLoader(fs afero.Fs, opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Refs == nil {
		opts.Refs = reference.Default()
	}
	return &Loader{
		fs:         fs,
		opts:       opts,
		companions: make(map[string]*dialects.Companion),
	}
}

// Load decodes the catalog at name. The catalog's source hashes describe
// its decompressed bytes.
func (l *Loader) Load(ctx context.Context, name string) (*signature.Catalog, error) {
	rc, comp, err := Open(l.fs, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	h := hasher.NewReader(rc)
	data, err := io.ReadAll(h)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}
	sum := h.Sum()

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", name, dialects.ErrNotWellFormed, err)
	}

	companion, err := l.companion(name, doc)
	if err != nil {
		log.Warn().Err(err).Str("path", name).Msg("ignoring unreadable database export")
	}

	cat, err := dialects.ParseDocument(doc, dialects.Options{
		Refs:       l.opts.Refs,
		Companion:  companion,
		Dialect:    l.opts.Dialect,
		Allow:      l.opts.Allow,
		SourceMD5:  sum.MD5,
		SourceSHA1: sum.SHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Debug().
		Str("path", name).
		Str("compression", string(comp)).
		Str("dialect", cat.SourceType.String()).
		Int("games", len(cat.Games)).
		Int("companion", companion.Len()).
		Msg("loaded catalog")
	return cat, nil
}

// companion finds and loads the database export for the catalog at name.
// It returns nil when there is none.
func (l *Loader) companion(name string, doc *xmlquery.Node) (*dialects.Companion, error) {
	headerName := nodeText(xmlquery.FindOne(doc, "/datafile/header/name"))
	if headerName == "" {
		return nil, nil
	}
	version := nodeText(xmlquery.FindOne(doc, "/datafile/header/version"))

	dirs := []string{filepath.Dir(name)}
	if l.opts.CompanionDir != "" {
		dirs = append(dirs, l.opts.CompanionDir)
	}

	want := dialects.CompanionFileName(headerName, version)
	for _, dir := range dirs {
		p := filepath.Join(dir, want)
		if ok, _ := afero.Exists(l.fs, p); ok {
			return l.loadCompanion(p)
		}
	}

	key := dialects.CompanionKey(trimCompression(filepath.Base(name)))
	for _, dir := range dirs {
		entries, err := afero.ReadDir(l.fs, dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !dialects.IsCompanionFile(e.Name()) {
				continue
			}
			if dialects.CompanionKey(trimCompression(e.Name())) == key {
				return l.loadCompanion(filepath.Join(dir, e.Name()))
			}
		}
	}
	return nil, nil
}

func (l *Loader) loadCompanion(p string) (*dialects.Companion, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.companions[p]; ok {
		return c, nil
	}

	rc, _, err := Open(l.fs, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	c, err := dialects.LoadCompanion(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	log.Info().Str("path", p).Int("records", c.Len()).Msg("loaded database export")
	l.companions[p] = c
	return c, nil
}

// trimCompression drops a compression suffix such as ".gz" so the name
// ends in the catalog's own extension.
func trimCompression(name string) string {
	for _, ext := range []string{".gz", ".zst", ".zip"} {
		if len(name) > len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

func nodeText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.InnerText())
}

// Result is the outcome of loading one file in a batch.
type Result struct {
	Catalog *signature.Catalog
	Err     error
	Path    string
}

// LoadAll loads every path with at most Options.Workers files in flight.
// A file that fails to load is reported in its Result and does not stop
// the batch; only cancellation of ctx does.
func (l *Loader) LoadAll(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	for i, p := range paths {
		results[i].Path = p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation passed through
			}
			cat, err := l.Load(gctx, p)
			if err != nil {
				log.Warn().Err(err).Str("path", p).Msg("failed to load catalog")
				results[i].Err = err
				return nil
			}
			results[i].Catalog = cat
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("loading catalogs: %w", err)
	}
	return results, nil
}

// Expand replaces each directory in paths with the catalog files under it,
// sorted by path. Database exports are left out since they are found
// through the catalogs they belong to.
func Expand(fs afero.Fs, paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := fs.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = afero.Walk(fs, p, func(fp string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() || !IsCatalogName(fi.Name()) || dialects.IsCompanionFile(fi.Name()) {
				return nil
			}
			out = append(out, fp)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
	}
	return out, nil
}
