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

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/ZaparooProject/go-datsig/pkg/tags"
	"github.com/antchfx/xmlquery"
)

type pureDOSDecoder struct {
	decoder
}

func newPureDOSDAT(refs *reference.Data, opts Options) Decoder {
	return &pureDOSDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectPureDOSDAT},
	}
}

func (d *pureDOSDecoder) Decode(doc *xmlquery.Node) (*signature.Catalog, error) {
	cat := &signature.Catalog{}
	readHeader(doc, cat, true)

	for i, n := range records(doc, "game") {
		g, err := d.game(n)
		if err := d.keep(cat, i, g, err); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (d *pureDOSDecoder) game(n *xmlquery.Node) (signature.Game, error) {
	name, err := requireName(n)
	if err != nil {
		return signature.Game{}, err
	}

	g := signature.Game{
		Name:   tags.Tokenize(name).Title,
		System: "DOS",
	}
	if g.Name == "" {
		g.Name = strings.TrimSpace(name)
	}

	var links []signature.Value
	for _, c := range elements(n) {
		key := strings.ToLower(c.Data)
		switch key {
		case "description":
			g.Description = c.InnerText()
		case "year":
			g.Year = c.InnerText()
		case "developer":
			g.Publisher = c.InnerText()
		case "link":
			link := make(map[string]signature.Value, len(c.Attr)+1)
			for _, a := range c.Attr {
				link[a.Name.Local] = signature.StringValue(a.Value)
			}
			link["url"] = signature.StringValue(c.InnerText())
			links = append(links, signature.MapValue(link))
		case "comment", "comment_dosc", "parent", "variant":
			g.Flags.AddString(key, c.InnerText())
		case "rom":
			g.Roms = append(g.Roms, readRom(c, d.dialect, sizeNullable))
		}
	}
	if len(links) > 0 {
		g.Flags.Add("link", signature.ListValue(links))
	}
	return g, nil
}
