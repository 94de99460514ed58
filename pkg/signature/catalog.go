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

package signature

import (
	"encoding/json"
	"maps"
)

// Catalog is one parsed DAT file. Decoders build it once; callers should
// treat it as read-only afterwards.
type Catalog struct {
	ID          string  `json:"Id,omitempty"`
	Name        string  `json:"Name,omitempty"`
	Description string  `json:"Description,omitempty"`
	Category    string  `json:"Category,omitempty"`
	Version     string  `json:"Version,omitempty"`
	Author      string  `json:"Author,omitempty"`
	Email       string  `json:"Email,omitempty"`
	Homepage    string  `json:"Homepage,omitempty"`
	URL         string  `json:"Url,omitempty"`
	SourceType  Dialect `json:"SourceType,omitempty"`
	SourceMD5   string  `json:"SourceMd5"`
	SourceSHA1  string  `json:"SourceSHA1"`
	Games       []Game  `json:"Games"`
}

// AddGame folds g into the catalog, merging it into an existing game with
// the same identity.
func (c *Catalog) AddGame(g Game) {
	c.Games = MergeGame(c.Games, g)
}

// RomCount is the total number of roms across all games.
func (c *Catalog) RomCount() int {
	n := 0
	for i := range c.Games {
		n += len(c.Games[i].Roms)
	}
	return n
}

// Game is one logical title and the roms that make it up.
type Game struct {
	Country        map[string]string `json:"Country,omitempty"`
	Language       map[string]string `json:"Language,omitempty"`
	Flags          Flags             `json:"flags,omitempty"`
	ID             string            `json:"Id,omitempty"`
	CloneOf        string            `json:"CloneOf,omitempty"`
	GameID         string            `json:"GameId,omitempty"`
	Category       string            `json:"Category,omitempty"`
	Name           string            `json:"Name,omitempty"`
	Description    string            `json:"Description,omitempty"`
	Year           string            `json:"Year,omitempty"`
	Publisher      string            `json:"Publisher,omitempty"`
	System         string            `json:"System,omitempty"`
	SystemVariant  string            `json:"SystemVariant,omitempty"`
	Video          string            `json:"Video,omitempty"`
	CountryString  string            `json:"CountryString,omitempty"`
	LanguageString string            `json:"LanguageString,omitempty"`
	Copyright      string            `json:"Copyright,omitempty"`
	Roms           []Rom             `json:"Roms"`
	Demo           DemoType          `json:"Demo"`
}

func (g *Game) RomCount() int {
	return len(g.Roms)
}

func (g Game) MarshalJSON() ([]byte, error) {
	type game Game
	return json.Marshal(struct {
		game
		RomCount int `json:"RomCount"`
	}{game: game(g), RomCount: len(g.Roms)})
}

// Rom is a single file belonging to a game.
type Rom struct {
	Size              *uint64           `json:"Size,omitempty"`
	Country           map[string]string `json:"Country,omitempty"`
	Language          map[string]string `json:"Language,omitempty"`
	Attributes        Flags             `json:"Attributes,omitempty"`
	ID                string            `json:"Id,omitempty"`
	Name              string            `json:"Name,omitempty"`
	CRC               string            `json:"Crc,omitempty"`
	MD5               string            `json:"Md5,omitempty"`
	SHA1              string            `json:"Sha1,omitempty"`
	SHA256            string            `json:"Sha256,omitempty"`
	Status            string            `json:"Status,omitempty"`
	DevelopmentStatus string            `json:"DevelopmentStatus,omitempty"`
	RomTypeMedia      string            `json:"RomTypeMedia,omitempty"`
	MediaLabel        string            `json:"MediaLabel,omitempty"`
	SignatureSource   Dialect           `json:"SignatureSource,omitempty"`
	RomType           RomType           `json:"RomType"`
}

// MediaDetail decodes RomTypeMedia on demand. It is nil when the rom has no
// media string.
func (r *Rom) MediaDetail() *MediaDetail {
	if r.RomTypeMedia == "" {
		return nil
	}
	md := ParseMediaDetail(r.RomTypeMedia)
	return &md
}

func (r Rom) MarshalJSON() ([]byte, error) {
	type rom Rom
	return json.Marshal(struct {
		MediaDetail *MediaDetail `json:"MediaDetail,omitempty"`
		rom
	}{rom: rom(r), MediaDetail: r.MediaDetail()})
}

// SameIdentity reports whether a and b are the same logical game: equal
// name, year, publisher, country map and language map.
func SameIdentity(a, b *Game) bool {
	return a.Name == b.Name &&
		a.Year == b.Year &&
		a.Publisher == b.Publisher &&
		maps.Equal(a.Country, b.Country) &&
		maps.Equal(a.Language, b.Language)
}

// MergeGame appends g's roms to the first game in games sharing its
// identity, or appends g itself when there is none. Metadata of the game
// seen first is kept.
func MergeGame(games []Game, g Game) []Game {
	for i := range games {
		if SameIdentity(&games[i], &g) {
			games[i].Roms = append(games[i].Roms, g.Roms...)
			return games
		}
	}
	return append(games, g)
}
