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

// Package hasher computes the checksums catalogs record for a file: CRC32,
// MD5 and SHA1, in a single pass over the content.
package hasher

import (
	"crypto/md5"  //nolint:gosec // catalogs identify content by md5
	"crypto/sha1" //nolint:gosec // catalogs identify content by sha1
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Hashes holds lowercase hex checksums of some content and its length.
type Hashes struct {
	CRC32 string
	MD5   string
	SHA1  string
	Size  int64
}

// HashReader reads r to the end and returns its checksums.
func HashReader(r io.Reader) (*Hashes, error) {
	h := NewReader(r)
	if _, err := io.Copy(io.Discard, h); err != nil {
		return nil, fmt.Errorf("failed to read content for hashing: %w", err)
	}
	return h.Sum(), nil
}

// Reader hashes everything read through it. Sum is valid once the wrapped
// reader has been drained.
type Reader struct {
	r    io.Reader
	crc  hash.Hash32
	md5  hash.Hash
	sha1 hash.Hash
	n    int64
}

func NewReader(r io.Reader) *Reader {
	h := &Reader{
		crc:  crc32.NewIEEE(),
		md5:  md5.New(),  //nolint:gosec // see import
		sha1: sha1.New(), //nolint:gosec // see import
	}
	h.r = io.TeeReader(r, io.MultiWriter(h.crc, h.md5, h.sha1))
	return h
}

func (h *Reader) Read(p []byte) (int, error) {
	n, err := h.r.Read(p)
	h.n += int64(n)
	return n, err //nolint:wrapcheck // io.Reader contract
}

// Sum returns the checksums of the bytes read so far.
func (h *Reader) Sum() *Hashes {
	return &Hashes{
		CRC32: fmt.Sprintf("%08x", h.crc.Sum32()),
		MD5:   hex.EncodeToString(h.md5.Sum(nil)),
		SHA1:  hex.EncodeToString(h.sha1.Sum(nil)),
		Size:  h.n,
	}
}

// HashFile hashes a file on fs. A path that runs through a zip archive,
// such as "/roms/snes.zip/Game.sfc", hashes that entry of the archive.
func HashFile(fs afero.Fs, path string) (*Hashes, error) {
	for i := len(path) - 1; i > 4; i-- {
		if !strings.HasSuffix(strings.ToLower(path[:i+1]), ".zip") || i+2 > len(path) {
			continue
		}
		zipPath, entry := path[:i+1], path[i+2:]
		if info, err := fs.Stat(zipPath); err == nil && !info.IsDir() {
			return hashZipEntry(fs, zipPath, entry)
		}
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return HashReader(f)
}

func hashZipEntry(fs afero.Fs, zipPath, entry string) (*Hashes, error) {
	f, err := fs.Open(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat zip: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read zip: %w", err)
	}

	for _, zf := range zr.File {
		if zf.Name != entry {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open file in zip: %w", err)
		}
		defer func() { _ = rc.Close() }()
		return HashReader(rc)
	}

	return nil, fmt.Errorf("file %s not found in archive %s", entry, zipPath)
}

// Matches reports whether h agrees with every checksum and size rom
// records. Checksums the rom leaves empty are not compared.
func (h *Hashes) Matches(rom *signature.Rom) bool {
	if rom.CRC != "" && !strings.EqualFold(rom.CRC, h.CRC32) {
		return false
	}
	if rom.MD5 != "" && !strings.EqualFold(rom.MD5, h.MD5) {
		return false
	}
	if rom.SHA1 != "" && !strings.EqualFold(rom.SHA1, h.SHA1) {
		return false
	}
	if rom.Size != nil && *rom.Size != uint64(h.Size) { //nolint:gosec // sizes are non-negative
		return false
	}
	return rom.CRC != "" || rom.MD5 != "" || rom.SHA1 != ""
}
