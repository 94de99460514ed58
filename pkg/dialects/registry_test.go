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

package dialects

import (
	"strings"
	"testing"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t testing.TB, src string) *xmlquery.Node {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func datafile(header, body string) string {
	return `<?xml version="1.0"?>
<datafile>
	<header>` + header + `</header>
	` + body + `
</datafile>`
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want signature.Dialect
	}{
		{
			name: "tosec",
			src:  datafile(`<name>Commodore Amiga - Games</name><category>TOSEC</category>`, ""),
			want: signature.DialectTOSEC,
		},
		{
			name: "mame arcade",
			src:  datafile(`<name>MAME</name><description>MAME Arcade 0.264</description>`, ""),
			want: signature.DialectMAMEArcade,
		},
		{
			name: "mame home",
			src:  datafile(`<name>MESS</name><description>MAME Home 0.264</description>`, ""),
			want: signature.DialectMAMEMess,
		},
		{
			name: "no-intro",
			src:  datafile(`<name>Nintendo - NES</name><homepage>No-Intro</homepage>`, ""),
			want: signature.DialectNoIntro,
		},
		{
			name: "redump",
			src:  datafile(`<name>Sony - PlayStation</name><homepage>redump.org</homepage>`, ""),
			want: signature.DialectRedump,
		},
		{
			name: "whdload",
			src:  `<whdbooter><game filename="a.lha"><name>A</name></game></whdbooter>`,
			want: signature.DialectWHDLoad,
		},
		{
			name: "retroachievements",
			src:  datafile(`<name>RetroAchievements - NES</name><category>RetroAchievements</category>`, ""),
			want: signature.DialectRetroAchievements,
		},
		{
			name: "fbneo",
			src:  datafile(`<name>FinalBurn Neo - Arcade Games</name><author>FinalBurn Neo</author>`, ""),
			want: signature.DialectFBNeo,
		},
		{
			name: "pure dos",
			src:  datafile(`<name>Pure DOS</name><homepage>Pure DOS DAT</homepage>`, ""),
			want: signature.DialectPureDOSDAT,
		},
		{
			name: "pleasuredome",
			src:  datafile(`<name>HBMAME</name><url>https://pleasuredome.github.io/pleasuredome/</url>`, ""),
			want: signature.DialectPleasuredome,
		},
		{
			name: "generic",
			src: datafile(`<name>Something</name>`,
				`<machine name="m"><description>M</description><rom name="m.bin" size="1"/></machine>`),
			want: signature.DialectGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Sniff(mustDoc(t, tt.src))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSniff_PriorityOrder(t *testing.T) {
	t.Parallel()

	src := datafile(`
		<name>MAME</name>
		<description>MAME Arcade</description>
		<category>TOSEC</category>
		<homepage>redump.org</homepage>
		<author>FinalBurn Neo</author>`,
		`<machine name="m"><description>M</description><rom name="m.bin"/></machine>`)

	got, ok := Sniff(mustDoc(t, src))
	require.True(t, ok)
	assert.Equal(t, signature.DialectTOSEC, got)
}

func TestSniff_NoMatch(t *testing.T) {
	t.Parallel()

	docs := []string{
		`<datafile/>`,
		`<datafile><header/></datafile>`,
		`<datafile><header><name>x</name></header><game name="g"/></datafile>`,
		`<other><header><category>TOSEC</category></header></other>`,
		``,
	}

	for _, src := range docs {
		doc := mustDoc(t, src)
		for _, r := range Registrations() {
			assert.NotPanics(t, func() { r.Probe(doc) })
		}
		_, ok := Sniff(doc)
		assert.False(t, ok, "document %q", src)
	}
}

func TestSniff_Allow(t *testing.T) {
	t.Parallel()

	src := datafile(`<category>TOSEC</category><homepage>redump.org</homepage>`, "")
	got, ok := sniff(mustDoc(t, src), []signature.Dialect{signature.DialectRedump})
	require.True(t, ok)
	assert.Equal(t, signature.DialectRedump, got)
}

func TestRegistrations_MatchDialectOrder(t *testing.T) {
	t.Parallel()

	regs := Registrations()
	require.Len(t, regs, len(signature.AllDialects))
	for i, r := range regs {
		assert.Equal(t, signature.AllDialects[i], r.Dialect)
	}
}

func TestParse_NotWellFormed(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(`<datafile><header>`), Options{})
	require.ErrorIs(t, err, ErrNotWellFormed)
}

func TestParse_UnknownDialect(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(`<datafile><header/></datafile>`), Options{})
	require.ErrorIs(t, err, ErrUnknownDialect)
	_, ok := FailedDialect(err)
	assert.False(t, ok, "no decoder ran")

	_, err = Parse(strings.NewReader(`<datafile/>`), Options{Dialect: "Nope"})
	require.ErrorIs(t, err, ErrUnknownDialect)
}

func TestParse_ForcedDialect(t *testing.T) {
	t.Parallel()

	src := datafile(`<name>Odd</name>`,
		`<machine name="m"><description>M</description><rom name="m.bin" size="x"/></machine>`)

	cat, err := Parse(strings.NewReader(src), Options{Dialect: signature.DialectMAMEArcade})
	require.NoError(t, err)
	assert.Equal(t, signature.DialectMAMEArcade, cat.SourceType)
	require.Len(t, cat.Games, 1)
	assert.Equal(t, "Arcade", cat.Games[0].System)
	assert.Nil(t, cat.Games[0].Roms[0].Size)
}

func TestParse_CatalogIdentity(t *testing.T) {
	t.Parallel()

	src := datafile(`<name>Sony - PlayStation</name><version>2024</version><homepage>redump.org</homepage>`, "")

	a, err := Parse(strings.NewReader(src), Options{SourceMD5: "ABCDEF", SourceSHA1: "0123AB"})
	require.NoError(t, err)
	b, err := Parse(strings.NewReader(src), Options{})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, a.ID, b.ID, "derived ids are stable")
	assert.Equal(t, "abcdef", a.SourceMD5)
	assert.Equal(t, "0123ab", a.SourceSHA1)
	assert.NotNil(t, a.Games)
	assert.Empty(t, a.Games)

	withID := datafile(`<id>42</id><name>Nintendo - NES</name><homepage>No-Intro</homepage>`, "")
	c, err := Parse(strings.NewReader(withID), Options{})
	require.NoError(t, err)
	assert.Equal(t, "42", c.ID)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://www.tosecdev.org/", normalizeURL("www.tosecdev.org/", true))
	assert.Equal(t, "https://redump.org/", normalizeURL("https://redump.org/", true))
	assert.Empty(t, normalizeURL("www.tosecdev.org", false))
	assert.Empty(t, normalizeURL("http://", true))
	assert.Empty(t, normalizeURL("  ", true))
}

func TestSizePolicy(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0), *sizeZero.parse("", false))
	assert.Equal(t, uint64(0), *sizeZero.parse("big", true))
	assert.Nil(t, sizeGeneric.parse("", false))
	assert.Equal(t, uint64(0), *sizeGeneric.parse("big", true))
	assert.Nil(t, sizeNullable.parse("", false))
	assert.Nil(t, sizeNullable.parse("-1", true))
	assert.Equal(t, uint64(1<<40), *sizeNullable.parse("1099511627776", true))
}

func TestNodeValue(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<driver status="good"><feature type="sound"/><feature type="graphics"/>`+
		`<note>fine</note></driver>`)
	v := nodeValue(root(doc))

	m, ok := v.Map()
	require.True(t, ok)
	status, _ := m["status"].Str()
	assert.Equal(t, "good", status)
	features, ok := m["feature"].List()
	require.True(t, ok)
	assert.Len(t, features, 2)
	note, _ := m["note"].Str()
	assert.Equal(t, "fine", note)

	plain := nodeValue(root(mustDoc(t, `<comment>hello</comment>`)))
	s, ok := plain.Str()
	require.True(t, ok)
	assert.Equal(t, "hello", s)
}
