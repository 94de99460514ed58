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

// Package index looks up catalog roms by checksum across many catalogs.
package index

import (
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/hasher"
	"github.com/ZaparooProject/go-datsig/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
)

// Match is a rom found in the index with the game and catalog holding it.
type Match struct {
	Catalog *signature.Catalog
	Game    *signature.Game
	Rom     *signature.Rom
	// By names the checksum that found the rom: "md5", "sha1" or "crc".
	By string
}

type crcKey struct {
	crc  string
	size int64
}

const unknownSize = -1

// Index is safe for concurrent use. Catalogs must not be modified after
// they are added.
type Index struct {
	byMD5    map[string][]Match
	bySHA1   map[string][]Match
	byCRC    map[crcKey][]Match
	catalogs int
	roms     int
	mu       syncutil.RWMutex
}

func New() *Index {
	return &Index{
		byMD5:  make(map[string][]Match),
		bySHA1: make(map[string][]Match),
		byCRC:  make(map[crcKey][]Match),
	}
}

// Add indexes every rom of cat.
func (ix *Index) Add(cat *signature.Catalog) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.catalogs++
	for gi := range cat.Games {
		g := &cat.Games[gi]
		for ri := range g.Roms {
			rom := &g.Roms[ri]
			m := Match{Catalog: cat, Game: g, Rom: rom}
			indexed := false
			if rom.MD5 != "" {
				ix.byMD5[strings.ToLower(rom.MD5)] = append(ix.byMD5[strings.ToLower(rom.MD5)], m)
				indexed = true
			}
			if rom.SHA1 != "" {
				ix.bySHA1[strings.ToLower(rom.SHA1)] = append(ix.bySHA1[strings.ToLower(rom.SHA1)], m)
				indexed = true
			}
			if rom.CRC != "" {
				k := crcKey{crc: strings.ToLower(rom.CRC), size: unknownSize}
				if rom.Size != nil {
					k.size = int64(*rom.Size) //nolint:gosec // rom sizes fit in int64
				}
				ix.byCRC[k] = append(ix.byCRC[k], m)
				indexed = true
			}
			if indexed {
				ix.roms++
			}
		}
	}
}

// Lookup returns the roms matching h, trying md5, then sha1, then crc32
// with the content size. Only the first checksum with a hit is used, and
// every match agrees with all checksums the rom records.
func (ix *Index) Lookup(h *hasher.Hashes) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	try := func(by string, candidates []Match) []Match {
		var out []Match
		for _, m := range candidates {
			if h.Matches(m.Rom) {
				m.By = by
				out = append(out, m)
			}
		}
		return out
	}

	if h.MD5 != "" {
		if out := try("md5", ix.byMD5[strings.ToLower(h.MD5)]); len(out) > 0 {
			return out
		}
	}
	if h.SHA1 != "" {
		if out := try("sha1", ix.bySHA1[strings.ToLower(h.SHA1)]); len(out) > 0 {
			return out
		}
	}
	if h.CRC32 != "" {
		crc := strings.ToLower(h.CRC32)
		candidates := append([]Match(nil), ix.byCRC[crcKey{crc: crc, size: h.Size}]...)
		candidates = append(candidates, ix.byCRC[crcKey{crc: crc, size: unknownSize}]...)
		return try("crc", candidates)
	}
	return nil
}

// Stats reports how many catalogs and checksummed roms were added.
func (ix *Index) Stats() (catalogs, roms int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.catalogs, ix.roms
}
