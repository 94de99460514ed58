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
	"fmt"
	iofs "io/fs"
	"os"
	"slices"

	"github.com/ZaparooProject/go-datsig/pkg/hasher"
	"github.com/ZaparooProject/go-datsig/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-datsig/pkg/index"
	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ScanResult is one scanned file and the catalog roms it matched.
type ScanResult struct {
	Hashes  *hasher.Hashes
	Path    string
	Matches []index.Match
}

// listFiles returns every regular file under root, sorted. The OS
// filesystem is walked in parallel.
func listFiles(fs afero.Fs, root string, follow bool) ([]string, error) {
	var files []string

	if _, ok := fs.(*afero.OsFs); ok {
		var mu syncutil.Mutex
		conf := fastwalk.Config{Follow: follow}
		err := fastwalk.Walk(&conf, root, func(p string, d iofs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", p).Msg("skipping unreadable path")
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if d.Type()&iofs.ModeSymlink != 0 {
				if !follow {
					return nil
				}
				if fi, err := os.Stat(p); err != nil || fi.IsDir() {
					return nil
				}
			}
			mu.Lock()
			files = append(files, p)
			mu.Unlock()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	} else {
		err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// Scan hashes every file under root and looks each one up in idx.
func Scan(
	ctx context.Context,
	fs afero.Fs,
	idx *index.Index,
	root string,
	workers int,
	follow bool,
) ([]ScanResult, error) {
	files, err := listFiles(fs, root, follow)
	if err != nil {
		return nil, err
	}
	log.Info().Int("files", len(files)).Str("root", root).Msg("scanning files")

	results := make([]ScanResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation passed through
			}
			results[i].Path = p
			h, err := hasher.HashFile(fs, p)
			if err != nil {
				log.Warn().Err(err).Str("path", p).Msg("failed to hash file")
				return nil
			}
			results[i].Hashes = h
			results[i].Matches = idx.Lookup(h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return slices.DeleteFunc(results, func(r ScanResult) bool {
		return r.Hashes == nil
	}), nil
}
