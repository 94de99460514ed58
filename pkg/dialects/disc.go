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
	"maps"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/ZaparooProject/go-datsig/pkg/tags"
	"github.com/antchfx/xmlquery"
)

// discDecoder reads No-Intro, Redump and RetroAchievements DATs, whose game
// names look like "Title (USA, Europe) (En,Fr) (Disc 1) (Label)".
type discDecoder struct {
	cls    *tags.Classifier
	system func(headerName string) string
	decoder
	sizes sizePolicy
}

func newNoIntro(refs *reference.Data, opts Options) Decoder {
	return &discDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectNoIntro},
		cls:     tags.NewClassifier(refs, tags.ProfileDisc),
		system:  func(name string) string { return name },
		sizes:   sizeZero,
	}
}

func newRedump(refs *reference.Data, opts Options) Decoder {
	return &discDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectRedump},
		cls:     tags.NewClassifier(refs, tags.ProfileDisc),
		system:  func(name string) string { return name },
		sizes:   sizeNullable,
	}
}

func newRetroAchievements(refs *reference.Data, opts Options) Decoder {
	return &discDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectRetroAchievements},
		cls:     tags.NewClassifier(refs, tags.ProfileDisc),
		system: func(name string) string {
			return strings.Replace(name, "RetroAchievements - ", "", 1)
		},
		sizes: sizeNullable,
	}
}

func (d *discDecoder) Decode(doc *xmlquery.Node) (*signature.Catalog, error) {
	cat := &signature.Catalog{}
	readHeader(doc, cat, false)
	system := d.system(cat.Name)

	for i, n := range records(doc, "game") {
		g, err := d.game(n, system)
		if err := d.keep(cat, i, g, err); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (d *discDecoder) game(n *xmlquery.Node, system string) (signature.Game, error) {
	name, err := requireName(n)
	if err != nil {
		return signature.Game{}, err
	}

	tok, st := d.cls.Decode(name)
	if err := st.Err(); err != nil {
		return signature.Game{}, err
	}
	title := tok.Title
	if title == "" {
		title = strings.TrimSpace(name)
	}

	g := signature.Game{
		Name:           title,
		Description:    title,
		System:         system,
		Year:           st.Year,
		Demo:           st.Demo,
		Country:        st.Country,
		CountryString:  st.CountryString,
		Language:       st.Language,
		LanguageString: st.LanguageString,
	}
	g.ID, _ = attr(n, "id")
	if clone, ok := attr(n, "cloneofid"); ok {
		g.CloneOf = clone
	}

	serial, _ := childText(n, "serial")
	for _, c := range elements(n) {
		switch strings.ToLower(c.Data) {
		case "category":
			g.Category = c.InnerText()
		case "description":
			g.Description = c.InnerText()
		case "serial":
			// copied onto every rom below
		case "rom":
			rom := readRom(c, d.dialect, d.sizes)
			d.romName(&rom)
			if serial != "" {
				rom.Attributes.AddString("serial", serial)
			}
			g.Roms = append(g.Roms, rom)
		default:
			g.Flags.AddString(c.Data, c.InnerText())
		}
	}

	if err := d.enrich(&g); err != nil {
		return signature.Game{}, err
	}

	for i := range g.Roms {
		g.Roms[i].Country = maps.Clone(g.Country)
		g.Roms[i].Language = maps.Clone(g.Language)
	}
	return g, nil
}

// romName decodes the per-file tags of a rom name: the "Disc N" part, a
// development status before it and a label after it.
func (d *discDecoder) romName(rom *signature.Rom) {
	tok := tags.Tokenize(tags.StripExtension(rom.Name))
	afterMedia := false
	devFound := false
	for _, seg := range tok.Tags {
		if !afterMedia && tags.IsDiscMarker(seg) {
			rom.RomType = signature.RomTypeDisc
			rom.RomTypeMedia = seg
			afterMedia = true
			continue
		}
		if afterMedia {
			rom.MediaLabel = seg
			continue
		}
		if !devFound {
			if code, _, ok := d.refs.Development.LookupFold(seg); ok {
				rom.DevelopmentStatus = code
				devFound = true
			}
		}
	}
}
