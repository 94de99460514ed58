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
	"fmt"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/antchfx/xmlquery"
)

// whdloadDecoder reads WHDLoad booter databases. Each <game> element is one
// archive; archives sharing a name form one game.
type whdloadDecoder struct {
	decoder
}

func newWHDLoad(refs *reference.Data, opts Options) Decoder {
	return &whdloadDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectWHDLoad},
	}
}

func (d *whdloadDecoder) Decode(doc *xmlquery.Node) (*signature.Catalog, error) {
	cat := &signature.Catalog{Name: "WHDLoad"}

	for i, n := range records(doc, "game") {
		g, err := d.game(n)
		if err := d.keep(cat, i, g, err); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (d *whdloadDecoder) game(n *xmlquery.Node) (signature.Game, error) {
	name, ok := childText(n, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return signature.Game{}, fmt.Errorf("%w: <game> has no <name>", ErrMalformedRecord)
	}

	g := signature.Game{
		Name:   name,
		System: "Commodore Amiga",
	}
	g.ID, _ = childText(n, "subpath")

	rom := signature.Rom{SignatureSource: d.dialect}
	rom.Name, _ = attr(n, "filename")
	v, present := attr(n, "size")
	rom.Size = sizeNullable.parse(v, present)
	for _, a := range n.Attr {
		switch strings.ToLower(a.Name.Local) {
		case "md5":
			rom.MD5 = strings.ToLower(a.Value)
		case "sha1":
			rom.SHA1 = strings.ToLower(a.Value)
		case "sha256":
			rom.SHA256 = strings.ToLower(a.Value)
		case "crc":
			rom.CRC = strings.ToLower(a.Value)
		case "status":
			rom.Status = a.Value
		case "filename", "size":
		default:
			rom.Attributes.AddString(a.Name.Local, a.Value)
		}
	}

	for _, c := range elements(n) {
		switch strings.ToLower(c.Data) {
		case "name", "subpath":
			continue
		}
		d.flatten(&rom, c)
	}

	g.Roms = []signature.Rom{rom}
	return g, nil
}

// flatten stores a child element's content in the rom's attributes under
// dotted keys such as "slave.1.datapath".
func (d *whdloadDecoder) flatten(rom *signature.Rom, n *xmlquery.Node) {
	key := n.Data
	if num, ok := attr(n, "number"); ok {
		key = key + "." + num
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			rom.Attributes.AddString(key+"."+c.Data, c.InnerText())
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if text := strings.TrimSpace(c.Data); text != "" {
				rom.Attributes.AddString(key, text)
			}
		}
	}
}
