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

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redumpDat = `<?xml version="1.0" encoding="UTF-8"?>
<datafile>
	<header>
		<name>Sony - PlayStation</name>
		<description>Sony - PlayStation - Discs (10000) (2024-01-01)</description>
		<version>2024-01-01</version>
		<homepage>redump.org</homepage>
		<url>http://redump.org/</url>
	</header>
	<game name="Final Fantasy VII (USA) (Disc 1)">
		<category>Games</category>
		<serial>SCUS-94163</serial>
		<description>Final Fantasy VII (USA) (Disc 1)</description>
		<rom name="Final Fantasy VII (USA) (Disc 1).bin" size="747435024" crc="1459CBEF" md5="A8B3F5E7C1D2E3F4A5B6C7D8E9F0A1B2" sha1="0D5F8B1F4C3E2A1B0C9D8E7F6A5B4C3D2E1F0A9B"/>
		<rom name="Final Fantasy VII (USA) (Disc 1).cue" size="94" crc="0a1b2c3d"/>
	</game>
	<game name="Final Fantasy VII (USA) (Disc 2)">
		<category>Games</category>
		<serial>SCUS-94164</serial>
		<rom name="Final Fantasy VII (USA) (Disc 2) (Midgar).bin" size="abc" crc="2459CBEF"/>
	</game>
	<game name="Crash Bandicoot (Japan) (Demo) (Beta)">
		<category>Demos</category>
		<rom name="Crash Bandicoot (Japan) (Beta) (Demo).bin" size="1000" crc="ffffffff"/>
		<notes>Kiosk disc</notes>
	</game>
</datafile>`

func TestRedump_Decode(t *testing.T) {
	t.Parallel()

	cat, err := Parse(strings.NewReader(redumpDat), Options{})
	require.NoError(t, err)
	assert.Equal(t, signature.DialectRedump, cat.SourceType)
	assert.Equal(t, "http://redump.org/", cat.URL)

	require.Len(t, cat.Games, 2, "the two discs share an identity")

	ff7 := cat.Games[0]
	assert.Equal(t, "Final Fantasy VII", ff7.Name)
	assert.Equal(t, "Sony - PlayStation", ff7.System)
	assert.Equal(t, "Games", ff7.Category)
	assert.Equal(t, map[string]string{"US": "United States"}, ff7.Country)
	assert.Equal(t, "USA", ff7.CountryString)

	require.Len(t, ff7.Roms, 3)
	bin := ff7.Roms[0]
	assert.Equal(t, "1459cbef", bin.CRC)
	assert.Equal(t, "a8b3f5e7c1d2e3f4a5b6c7d8e9f0a1b2", bin.MD5)
	assert.Equal(t, signature.RomTypeDisc, bin.RomType)
	assert.Equal(t, "Disc 1", bin.RomTypeMedia)
	assert.Equal(t, "SCUS-94163", bin.Attributes.Str("serial"))
	assert.Equal(t, map[string]string{"US": "United States"}, bin.Country)

	disc2 := ff7.Roms[2]
	assert.Nil(t, disc2.Size, "non-numeric sizes are unknown")
	assert.Equal(t, "Disc 2", disc2.RomTypeMedia)
	assert.Equal(t, "Midgar", disc2.MediaLabel)
	assert.Equal(t, "SCUS-94164", disc2.Attributes.Str("serial"))

	crash := cat.Games[1]
	assert.Equal(t, signature.Demo, crash.Demo)
	assert.Equal(t, "Kiosk disc", crash.Flags.Str("notes"))
	assert.Equal(t, "beta", crash.Roms[0].DevelopmentStatus)
	assert.Empty(t, crash.Roms[0].MediaLabel)
}

func TestRetroAchievements_Decode(t *testing.T) {
	t.Parallel()

	src := datafile(
		`<name>RetroAchievements - Nintendo Entertainment System</name><category>RetroAchievements</category>`,
		`<game name="Super Mario Bros. (World)">
			<category>Games</category>
			<rom name="Super Mario Bros. (World).nes" size="40976" md5="811B027EAF99C2DEF7B933C5208636DE"/>
		</game>
		<game name="Zelda II (Europe) (En,Fr,De)">
			<rom name="Zelda II (Europe) (En,Fr,De).nes"/>
		</game>`)

	cat, err := Parse(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, signature.DialectRetroAchievements, cat.SourceType)
	require.Len(t, cat.Games, 2)

	smb := cat.Games[0]
	assert.Equal(t, "Nintendo Entertainment System", smb.System)
	assert.Equal(t, "Super Mario Bros.", smb.Name)
	assert.Equal(t, "811b027eaf99c2def7b933c5208636de", smb.Roms[0].MD5)

	zelda := cat.Games[1]
	assert.Equal(t, map[string]string{"EU": "Europe"}, zelda.Country)
	assert.Equal(t, map[string]string{"en": "English", "fr": "French", "de": "German"}, zelda.Language)
	assert.Nil(t, zelda.Roms[0].Size)
}

const noIntroDat = `<?xml version="1.0"?>
<datafile>
	<header>
		<id>45</id>
		<name>Nintendo - Nintendo Entertainment System</name>
		<description>Nintendo - Nintendo Entertainment System</description>
		<version>20240101-000000</version>
		<homepage>No-Intro</homepage>
		<url>https://www.no-intro.org</url>
	</header>
	<game name="Super Mario Bros. (World)" id="0001">
		<description>Super Mario Bros. (World)</description>
		<rom name="Super Mario Bros. (World).nes" size="40976" crc="3337EC46" md5="811B027EAF99C2DEF7B933C5208636DE" sha1="FACEE9C577A5262DBE33AC4930BB0B58C8C037F7" status="verified"/>
	</game>
	<game name="Tetris (USA)" id="0002">
		<description>Tetris (USA)</description>
		<rom name="Tetris (USA).nes" crc="1394F57E"/>
	</game>
</datafile>`

const noIntroDB = `<?xml version="1.0"?>
<datafile>
	<game name="Super Mario Bros. (DB)">
		<archive number="0001" clone="P" name="Super Mario Brothers" region="Japan, USA" languages="En,Ja" categories="Games" gameid1="NES-SM" additional="Rev 1"/>
		<source>
			<details section="Trusted Dump"/>
			<file id="1234" extension="nes" size="40976" crc32="3337ec46" md5="811b027eaf99c2def7b933c5208636de" sha1="facee9c577a5262dbe33ac4930bb0b58c8c037f7"/>
		</source>
	</game>
</datafile>`

func TestNoIntro_Decode(t *testing.T) {
	t.Parallel()

	cat, err := Parse(strings.NewReader(noIntroDat), Options{})
	require.NoError(t, err)
	assert.Equal(t, signature.DialectNoIntro, cat.SourceType)
	assert.Equal(t, "45", cat.ID)
	require.Len(t, cat.Games, 2)

	smb := cat.Games[0]
	assert.Equal(t, "0001", smb.ID)
	assert.Equal(t, "Super Mario Bros.", smb.Name)
	assert.Equal(t, "Super Mario Bros. (World)", smb.Description)
	assert.Equal(t, "verified", smb.Roms[0].Status)

	tetris := cat.Games[1]
	require.NotNil(t, tetris.Roms[0].Size, "missing sizes default to zero")
	assert.Equal(t, uint64(0), *tetris.Roms[0].Size)
}

func TestNoIntro_CompanionOverrides(t *testing.T) {
	t.Parallel()

	db, err := LoadCompanion(strings.NewReader(noIntroDB))
	require.NoError(t, err)
	assert.Equal(t, 1, db.Len())

	cat, err := Parse(strings.NewReader(noIntroDat), Options{Companion: db})
	require.NoError(t, err)
	require.Len(t, cat.Games, 2)

	smb := cat.Games[0]
	assert.Equal(t, "0001", smb.ID)
	assert.Equal(t, "NES-SM", smb.GameID)
	assert.Equal(t, "Super Mario Brothers", smb.Name, "the export's name wins")
	assert.Equal(t, "Games", smb.Category)
	assert.Equal(t, map[string]string{"JP": "Japan", "US": "United States"}, smb.Country)
	assert.Equal(t, "Japan, USA", smb.CountryString)
	assert.Equal(t, map[string]string{"en": "English", "ja": "Japanese"}, smb.Language)

	rom := smb.Roms[0]
	assert.Equal(t, "1234", rom.ID)
	assert.Equal(t, "Rev 1", rom.RomTypeMedia)
	assert.Equal(t, smb.Country, rom.Country)
	assert.Equal(t, smb.Language, rom.Language)

	rom.Country["ZZ"] = "x"
	assert.NotContains(t, smb.Country, "ZZ")

	assert.Empty(t, cat.Games[1].GameID, "unmatched games are untouched")
}

const redumpDB = `<?xml version="1.0"?>
<datafile>
	<game name="Final Fantasy VII International">
		<archive number="0042" name="Final Fantasy VII International" region="Japan" languages="Ja" categories="Games, Special Editions" gameid1="SLPS-01057"/>
		<source>
			<file id="9001" extension="bin" size="747435024" md5="a8b3f5e7c1d2e3f4a5b6c7d8e9f0a1b2"/>
		</source>
	</game>
</datafile>`

func TestRedump_CompanionOverrides(t *testing.T) {
	t.Parallel()

	db, err := LoadCompanion(strings.NewReader(redumpDB))
	require.NoError(t, err)

	cat, err := Parse(strings.NewReader(redumpDat), Options{Companion: db})
	require.NoError(t, err)
	assert.Equal(t, signature.DialectRedump, cat.SourceType)
	require.Len(t, cat.Games, 3, "the enriched disc no longer shares the second disc's identity")

	ff7 := cat.Games[0]
	assert.Equal(t, "0042", ff7.ID)
	assert.Equal(t, "SLPS-01057", ff7.GameID)
	assert.Equal(t, "Final Fantasy VII International", ff7.Name)
	assert.Equal(t, "Games, Special Editions", ff7.Category)
	assert.Equal(t, map[string]string{"JP": "Japan"}, ff7.Country)
	assert.Equal(t, "Japan", ff7.CountryString)
	assert.Equal(t, map[string]string{"ja": "Japanese"}, ff7.Language)
	assert.Equal(t, "Ja", ff7.LanguageString)

	require.Len(t, ff7.Roms, 2)
	assert.Equal(t, "9001", ff7.Roms[0].ID)
	assert.Equal(t, ff7.Country, ff7.Roms[0].Country)
	assert.Equal(t, ff7.Country, ff7.Roms[1].Country, "every rom of the game gets the region")

	disc2 := cat.Games[1]
	assert.Equal(t, "Final Fantasy VII", disc2.Name)
	assert.Equal(t, map[string]string{"US": "United States"}, disc2.Country)
}

func TestRedump_CompanionInvalidReferenceSurfaces(t *testing.T) {
	t.Parallel()

	db, err := LoadCompanion(strings.NewReader(strings.Replace(redumpDB, `region="Japan"`, `region="Nowhere"`, 1)))
	require.NoError(t, err)

	refs := syntheticRefs("US,United States\nNowhere,Nowhere|ZZ\n")
	_, err = Parse(strings.NewReader(redumpDat), Options{Refs: refs, Companion: db})
	require.ErrorIs(t, err, reference.ErrInvalidReference)
}

func TestCompanion_Lookup(t *testing.T) {
	t.Parallel()

	db, err := LoadCompanion(strings.NewReader(noIntroDB))
	require.NoError(t, err)

	rec, ok := db.Lookup("", "FACEE9C577A5262DBE33AC4930BB0B58C8C037F7")
	require.True(t, ok)
	assert.Equal(t, "Super Mario Brothers (Rev 1).nes", rec.RomName())
	require.NotNil(t, rec.Size)
	assert.Equal(t, uint64(40976), *rec.Size)

	_, ok = db.Lookup("00", "00")
	assert.False(t, ok)

	var none *Companion
	_, ok = none.Lookup("a", "b")
	assert.False(t, ok)
	assert.Zero(t, none.Len())

	_, err = LoadCompanion(strings.NewReader("<datafile>"))
	require.ErrorIs(t, err, ErrNotWellFormed)
}

func TestCompanionNames(t *testing.T) {
	t.Parallel()

	name := CompanionFileName("Nintendo - NES", "20240101")
	assert.Equal(t, "Nintendo - NES (DB Export) (20240101).xml", name)
	assert.True(t, IsCompanionFile(name))
	assert.False(t, IsCompanionFile("Nintendo - NES (20240101).dat"))
	assert.Equal(t, CompanionKey("Nintendo - NES (20240101).dat"), CompanionKey(name))
}
