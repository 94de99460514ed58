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

package datfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/dialects"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
)

// ErrNoCatalogEntry is returned for a zip archive with no .dat or .xml file.
var ErrNoCatalogEntry = errors.New("archive has no catalog entry")

// Compression is the container a catalog file was stored in.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionZip  Compression = "zip"
)

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicZip  = []byte{'P', 'K', 0x03, 0x04}
)

// Detect identifies the compression of content from its first bytes.
func Detect(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return CompressionGzip
	case bytes.HasPrefix(head, magicZstd):
		return CompressionZstd
	case bytes.HasPrefix(head, magicZip):
		return CompressionZip
	default:
		return CompressionNone
	}
}

// IsCatalogName reports whether a file name has an extension catalogs are
// distributed with.
func IsCatalogName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".dat", ".xml", ".gz", ".zst", ".zip":
		return true
	default:
		return false
	}
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open returns the decompressed content of the file at name. The
// compression is detected from the content, not the file extension.
func Open(fs afero.Fs, name string) (io.ReadCloser, Compression, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open catalog: %w", err)
	}

	br := bufio.NewReader(f)
	head, err := br.Peek(len(magicZstd))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, "", fmt.Errorf("failed to read catalog: %w", err)
	}

	comp := Detect(head)
	switch comp {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, "", fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &multiCloser{Reader: zr, closers: []io.Closer{f, zr}}, comp, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = f.Close()
			return nil, "", fmt.Errorf("failed to open zstd stream: %w", err)
		}
		rc := zr.IOReadCloser()
		return &multiCloser{Reader: rc, closers: []io.Closer{f, rc}}, comp, nil
	case CompressionZip:
		rc, err := openZipEntry(br)
		_ = f.Close()
		if err != nil {
			return nil, "", err
		}
		return rc, comp, nil
	default:
		return &multiCloser{Reader: br, closers: []io.Closer{f}}, comp, nil
	}
}

// openZipEntry returns the first .dat entry of a zip archive, or the first
// .xml entry when there is none. Database exports inside the archive are
// passed over.
func openZipEntry(r io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var pick *zip.File
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || dialects.IsCompanionFile(zf.Name) {
			continue
		}
		ext := strings.ToLower(path.Ext(zf.Name))
		if ext == ".dat" {
			pick = zf
			break
		}
		if ext == ".xml" && pick == nil {
			pick = zf
		}
	}
	if pick == nil {
		return nil, ErrNoCatalogEntry
	}

	rc, err := pick.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in zip: %w", pick.Name, err)
	}
	return rc, nil
}
