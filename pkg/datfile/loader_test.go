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
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ZaparooProject/go-datsig/pkg/dialects"
	"github.com/ZaparooProject/go-datsig/pkg/hasher"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nesDat = `<?xml version="1.0"?>
<datafile>
	<header>
		<name>Nintendo - Nintendo Entertainment System</name>
		<description>Nintendo - Nintendo Entertainment System</description>
		<version>20240101-000000</version>
		<homepage>No-Intro</homepage>
	</header>
	<game name="Super Mario Bros. (World)" id="0001">
		<description>Super Mario Bros. (World)</description>
		<rom name="Super Mario Bros. (World).nes" size="40976" crc="3337EC46" md5="811B027EAF99C2DEF7B933C5208636DE"/>
	</game>
</datafile>`

const nesDB = `<?xml version="1.0"?>
<datafile>
	<game name="Super Mario Bros.">
		<archive number="0001" name="Super Mario Bros." region="USA" languages="En" categories="Games" gameid1="NES-SM"/>
		<source>
			<file id="1234" extension="nes" md5="811b027eaf99c2def7b933c5208636de"/>
		</source>
	</game>
</datafile>`

const tosecDat = `<?xml version="1.0"?>
<datafile>
	<header>
		<name>Commodore Amiga - Games</name>
		<category>TOSEC</category>
		<version>2024-01-01</version>
	</header>
	<game name="Turrican (1990)(Rainbow Arts)">
		<description>Turrican (1990)(Rainbow Arts)</description>
		<rom name="Turrican (1990)(Rainbow Arts).adf" size="901120" crc="12345678"/>
	</game>
</datafile>`

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer func() { _ = enc.Close() }()
	return enc.EncodeAll([]byte(data), nil)
}

func zipBytes(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		head []byte
		want Compression
	}{
		{name: "gzip", head: []byte{0x1f, 0x8b, 0x08, 0x00}, want: CompressionGzip},
		{name: "zstd", head: []byte{0x28, 0xb5, 0x2f, 0xfd}, want: CompressionZstd},
		{name: "zip", head: []byte("PK\x03\x04"), want: CompressionZip},
		{name: "xml", head: []byte("<?xm"), want: CompressionNone},
		{name: "short", head: []byte{0x28}, want: CompressionNone},
		{name: "empty", head: nil, want: CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Detect(tt.head))
		})
	}
}

func TestLoad_CompressedMatchesPlain(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dats/plain.dat", []byte(tosecDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/packed.dat.gz", gzipBytes(t, tosecDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/packed.dat.zst", zstdBytes(t, tosecDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/packed.zip", zipBytes(t,
		map[string]string{"readme.txt": "hi", "Amiga.dat": tosecDat},
		"readme.txt", "Amiga.dat"), 0o600))
	// extension is not trusted
	require.NoError(t, afero.WriteFile(fs, "/dats/misnamed.dat", gzipBytes(t, tosecDat), 0o600))

	l := NewLoader(fs, Options{})
	ctx := context.Background()

	plain, err := l.Load(ctx, "/dats/plain.dat")
	require.NoError(t, err)
	assert.Equal(t, signature.DialectTOSEC, plain.SourceType)

	want, err := hasher.HashReader(bytes.NewReader([]byte(tosecDat)))
	require.NoError(t, err)
	assert.Equal(t, want.MD5, plain.SourceMD5)
	assert.Equal(t, want.SHA1, plain.SourceSHA1)

	for _, p := range []string{
		"/dats/packed.dat.gz", "/dats/packed.dat.zst", "/dats/packed.zip", "/dats/misnamed.dat",
	} {
		got, err := l.Load(ctx, p)
		require.NoError(t, err, p)
		assert.Equal(t, plain, got, p)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bad.dat", []byte("<datafile><game>"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/unknown.xml", []byte("<catalog/>"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/empty.zip",
		zipBytes(t, map[string]string{"a.txt": "x"}, "a.txt"), 0o600))

	l := NewLoader(fs, Options{})
	ctx := context.Background()

	_, err := l.Load(ctx, "/bad.dat")
	require.ErrorIs(t, err, dialects.ErrNotWellFormed)

	_, err = l.Load(ctx, "/unknown.xml")
	require.ErrorIs(t, err, dialects.ErrUnknownDialect)

	_, err = l.Load(ctx, "/empty.zip")
	require.ErrorIs(t, err, ErrNoCatalogEntry)

	_, err = l.Load(ctx, "/missing.dat")
	require.Error(t, err)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	require.NoError(t, afero.WriteFile(fs, "/ok.dat", []byte(tosecDat), 0o600))
	_, err = l.Load(canceled, "/ok.dat")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad_CompanionDiscovery(t *testing.T) {
	t.Parallel()

	dbName := dialects.CompanionFileName("Nintendo - Nintendo Entertainment System", "20240101-000000")

	tests := []struct {
		files map[string][]byte
		opts  Options
		name  string
		dat   string
	}{
		{
			name: "next to the catalog",
			dat:  "/dats/nes.dat",
			files: map[string][]byte{
				"/dats/" + dbName: []byte(nesDB),
			},
		},
		{
			name: "in the companion directory",
			dat:  "/dats/nes.dat",
			opts: Options{CompanionDir: "/db"},
			files: map[string][]byte{
				"/db/" + dbName: []byte(nesDB),
			},
		},
		{
			name: "matched by file name key",
			dat:  "/dats/Nintendo - NES (2024).dat",
			opts: Options{CompanionDir: "/db"},
			files: map[string][]byte{
				"/db/Nintendo - NES (DB Export) (2024).xml.gz": gzipBytes(t, nesDB),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, tt.dat, []byte(nesDat), 0o600))
			for p, data := range tt.files {
				require.NoError(t, afero.WriteFile(fs, p, data, 0o600))
			}

			cat, err := NewLoader(fs, tt.opts).Load(context.Background(), tt.dat)
			require.NoError(t, err)
			require.Len(t, cat.Games, 1)
			g := cat.Games[0]
			assert.Equal(t, "NES-SM", g.GameID)
			assert.Equal(t, "Games", g.Category)
			assert.Equal(t, "1234", g.Roms[0].ID)
		})
	}
}

func TestLoad_NoCompanion(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/nes.dat", []byte(nesDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/"+dialects.CompanionFileName(
		"Nintendo - Nintendo Entertainment System", "20240101-000000"), []byte("<broken"), 0o600))

	cat, err := NewLoader(fs, Options{}).Load(context.Background(), "/nes.dat")
	require.NoError(t, err, "an unreadable export is ignored")
	assert.Empty(t, cat.Games[0].GameID)
}

func TestLoadAll(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dats/a.dat", []byte(tosecDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/b.dat", []byte(nesDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/c.dat", []byte("<datafile><game>"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/sub/d.dat.gz", gzipBytes(t, tosecDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/notes.txt", []byte("skip"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/"+dialects.CompanionFileName("X", "1"),
		[]byte(nesDB), 0o600))

	paths, err := Expand(fs, []string{"/dats"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/dats/a.dat", "/dats/b.dat", "/dats/c.dat", "/dats/sub/d.dat.gz"}, paths)

	results, err := NewLoader(fs, Options{Workers: 2}).LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path, "results keep input order")
	}
	assert.Equal(t, signature.DialectTOSEC, results[0].Catalog.SourceType)
	assert.Equal(t, signature.DialectNoIntro, results[1].Catalog.SourceType)
	require.Error(t, results[2].Err)
	assert.Nil(t, results[2].Catalog)
	assert.Equal(t, signature.DialectTOSEC, results[3].Catalog.SourceType)
}

func TestLoadAll_Canceled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/a.dat", []byte(tosecDat), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(fs, Options{}).LoadAll(ctx, []string{"/a.dat", "/a.dat"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExpand_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := Expand(afero.NewMemMapFs(), []string{"/nope"})
	require.Error(t, err)
}

func TestIsCatalogName(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCatalogName("a.DAT"))
	assert.True(t, IsCatalogName("a.xml"))
	assert.True(t, IsCatalogName("a.dat.zst"))
	assert.False(t, IsCatalogName("a.txt"))
	assert.False(t, IsCatalogName("README"))
}
