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

type tosecDecoder struct {
	cls *tags.Classifier
	decoder
}

func newTOSEC(refs *reference.Data, opts Options) Decoder {
	return &tosecDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectTOSEC},
		cls:     tags.NewClassifier(refs, tags.ProfileTOSEC),
	}
}

func (d *tosecDecoder) Decode(doc *xmlquery.Node) (*signature.Catalog, error) {
	cat := &signature.Catalog{}
	readHeader(doc, cat, true)
	system, _, _ := strings.Cut(cat.Name, " - ")

	for i, n := range records(doc, "game") {
		g, err := d.game(n, system)
		if err := d.keep(cat, i, g, err); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (d *tosecDecoder) game(n *xmlquery.Node, system string) (signature.Game, error) {
	name, err := requireName(n)
	if err != nil {
		return signature.Game{}, err
	}

	tok, st := d.cls.DecodePositional(name)
	if err := st.Err(); err != nil {
		return signature.Game{}, err
	}

	g := signature.Game{
		Name:           tok.Title,
		Year:           st.Year,
		Publisher:      st.Publisher,
		Demo:           st.Demo,
		System:         system,
		SystemVariant:  st.SystemVariant,
		Video:          st.Video,
		Country:        st.Country,
		CountryString:  st.CountryString,
		Language:       st.Language,
		LanguageString: st.LanguageString,
		Copyright:      st.Copyright,
	}

	// Rom level fields come from the description, which normally repeats
	// the name.
	romSt := st
	if desc, ok := childText(n, "description"); ok {
		g.Description = desc
		if desc != name && strings.TrimSpace(desc) != "" {
			_, romSt = d.cls.DecodePositional(desc)
			if err := romSt.Err(); err != nil {
				return signature.Game{}, err
			}
		}
	}

	for _, rn := range elements(n) {
		if !strings.EqualFold(rn.Data, "rom") {
			continue
		}
		rom := readRom(rn, d.dialect, sizeZero)
		rom.Country = maps.Clone(g.Country)
		rom.Language = maps.Clone(g.Language)
		rom.DevelopmentStatus = romSt.DevelopmentStatus
		rom.RomType = romSt.MediaType
		rom.RomTypeMedia = romSt.MediaString
		rom.MediaLabel = romSt.MediaLabel
		for code, v := range romSt.DumpFlags {
			rom.Attributes.Add(code, v)
		}
		g.Roms = append(g.Roms, rom)
	}
	return g, nil
}
