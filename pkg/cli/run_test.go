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
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"testing"

	"github.com/ZaparooProject/go-datsig/pkg/config"
	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const amigaDat = `<?xml version="1.0"?>
<datafile>
	<header>
		<name>Commodore Amiga - Games</name>
		<category>TOSEC</category>
		<version>2024-01-01</version>
	</header>
	<game name="Turrican (1990)(Rainbow Arts)">
		<description>Turrican (1990)(Rainbow Arts)</description>
		<rom name="Turrican (1990)(Rainbow Arts).adf" size="13" crc="ec4ac3d0" md5="65A8E27D8879283831B664BD8B7F0AD4"/>
	</game>
</datafile>`

func newTestConfig(t *testing.T) *config.Instance {
	t.Helper()
	cfg, err := config.NewConfig(afero.NewMemMapFs(), "", config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestRunner_JSONReport(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dats/amiga.dat", []byte(amigaDat), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/dats/broken.dat", []byte("<datafile><game>"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/roms/Turrican.adf", []byte("Hello, World!"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/roms/unknown.bin", []byte("nope"), 0o600))

	cfg := newTestConfig(t)
	cfg.SetRomsDir("/roms")

	var out bytes.Buffer
	r := &Runner{Fs: fs, Stdout: &out, Cfg: cfg}
	err := r.Run(context.Background(), []string{"/dats"})
	require.ErrorIs(t, err, ErrLoadFailed)

	var report struct {
		Catalogs []struct {
			Name       string
			SourceType string
			Games      []struct{ Name string }
		}
		Errors []ReportError
		Scan   []ScanEntry
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))

	require.Len(t, report.Catalogs, 1)
	assert.Equal(t, "TOSEC", report.Catalogs[0].SourceType)
	assert.Equal(t, "Turrican", report.Catalogs[0].Games[0].Name)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "/dats/broken.dat", report.Errors[0].Path)

	require.Len(t, report.Scan, 2)
	assert.Equal(t, "/roms/Turrican.adf", report.Scan[0].Path)
	require.Len(t, report.Scan[0].Matches, 1)
	assert.Equal(t, ScanMatch{
		Catalog: "Commodore Amiga - Games",
		Game:    "Turrican",
		Rom:     "Turrican (1990)(Rainbow Arts).adf",
		By:      "md5",
	}, report.Scan[0].Matches[0])
	assert.Empty(t, report.Scan[1].Matches)
}

func TestRunner_ReportsCatalogFailures(t *testing.T) {
	t.Parallel()

	type failure struct {
		path    string
		dialect signature.Dialect
	}

	tests := []struct {
		name    string
		forced  signature.Dialect
		wantErr []failure
	}{
		{
			name:    "sniffed",
			wantErr: []failure{{path: "/dats/broken.dat", dialect: ""}},
		},
		{
			name:    "forced dialect",
			forced:  signature.DialectGeneric,
			wantErr: []failure{{path: "/dats/broken.dat", dialect: signature.DialectGeneric}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/dats/amiga.dat", []byte(amigaDat), 0o600))
			require.NoError(t, afero.WriteFile(fs, "/dats/broken.dat", []byte("<datafile><game>"), 0o600))

			var got []failure
			r := &Runner{
				Fs:      fs,
				Stdout:  &bytes.Buffer{},
				Cfg:     newTestConfig(t),
				Dialect: tt.forced,
				OnCatalogError: func(path string, dialect signature.Dialect, err error) {
					assert.Error(t, err)
					got = append(got, failure{path: path, dialect: dialect})
				},
			}
			require.ErrorIs(t, r.Run(context.Background(), []string{"/dats"}), ErrLoadFailed)
			assert.Equal(t, tt.wantErr, got)
		})
	}
}

func TestRunner_TableToFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/amiga.dat", []byte(amigaDat), 0o600))

	cfg := newTestConfig(t)
	require.NoError(t, cfg.SetOutputFormat(config.FormatTable))
	cfg.SetOutputPath("/out/report.txt")

	var stdout bytes.Buffer
	r := &Runner{Fs: fs, Stdout: &stdout, Cfg: cfg}
	require.NoError(t, r.Run(context.Background(), []string{"/amiga.dat"}))
	assert.Empty(t, stdout.String())

	data, err := afero.ReadFile(fs, "/out/report.txt")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Commodore Amiga - Games")
	assert.Contains(t, string(data), "TOSEC")
	assert.Contains(t, string(data), "Dialect")
}

func TestRunner_ForcedDialect(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/amiga.dat", []byte(amigaDat), 0o600))

	var out bytes.Buffer
	r := &Runner{Fs: fs, Stdout: &out, Cfg: newTestConfig(t), Dialect: signature.DialectGeneric}
	require.NoError(t, r.Run(context.Background(), []string{"/amiga.dat"}))
	assert.Contains(t, out.String(), `"SourceType": "Generic"`)
}

func TestRunner_BrokenReferenceTablesStopBeforeParsing(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/amiga.dat", []byte(amigaDat), 0o600))

	refs := *reference.Default()
	refs.Countries = reference.NewTableFromString("country", "US,United States\nXX,Broken|ZZ\n")

	var out bytes.Buffer
	r := &Runner{Fs: fs, Stdout: &out, Cfg: newTestConfig(t), Refs: &refs}
	err := r.Run(context.Background(), []string{"/amiga.dat"})
	require.ErrorIs(t, err, reference.ErrInvalidReference)
	assert.Empty(t, out.String(), "no report is written")
}

func TestRunner_NoInput(t *testing.T) {
	t.Parallel()

	r := &Runner{Fs: afero.NewMemMapFs(), Stdout: &bytes.Buffer{}, Cfg: newTestConfig(t)}
	require.ErrorIs(t, r.Run(context.Background(), nil), ErrNoInput)
}

func TestFlags_Post(t *testing.T) {
	t.Parallel()

	set := flag.NewFlagSet("datsig", flag.ContinueOnError)
	f := NewFlags(set)
	require.NoError(t, set.Parse([]string{
		"-workers", "8", "-format", "table", "-out", "/r.txt",
		"-db", "/db", "-scan", "/roms", "-dialect", "redump", "a.dat", "b.dat",
	}))

	cfg := newTestConfig(t)
	require.NoError(t, f.Post(cfg))
	assert.Equal(t, 8, cfg.Workers())
	assert.Equal(t, config.FormatTable, cfg.OutputFormat())
	assert.Equal(t, "/r.txt", cfg.OutputPath())
	assert.Equal(t, "/db", cfg.CompanionDBDir())
	assert.Equal(t, "/roms", cfg.RomsDir())
	assert.Equal(t, []string{"a.dat", "b.dat"}, f.Args())

	d, err := f.ForcedDialect()
	require.NoError(t, err)
	assert.Equal(t, signature.DialectRedump, d)
}

func TestFlags_PostRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "workers", args: []string{"-workers", "0"}},
		{name: "format", args: []string{"-format", "csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			set := flag.NewFlagSet("datsig", flag.ContinueOnError)
			f := NewFlags(set)
			require.NoError(t, set.Parse(tt.args))
			require.Error(t, f.Post(newTestConfig(t)))
		})
	}

	set := flag.NewFlagSet("datsig", flag.ContinueOnError)
	f := NewFlags(set)
	require.NoError(t, set.Parse([]string{"-dialect", "nope"}))
	_, err := f.ForcedDialect()
	require.Error(t, err)
}

func TestFlags_UnsetLeavesConfig(t *testing.T) {
	t.Parallel()

	set := flag.NewFlagSet("datsig", flag.ContinueOnError)
	f := NewFlags(set)
	require.NoError(t, set.Parse(nil))

	cfg := newTestConfig(t)
	require.NoError(t, f.Post(cfg))
	assert.Equal(t, config.BaseDefaults.Parse.Workers, cfg.Workers())
	assert.Equal(t, config.FormatJSON, cfg.OutputFormat())

	d, err := f.ForcedDialect()
	require.NoError(t, err)
	assert.Empty(t, d)
}
