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
	"github.com/antchfx/xmlquery"
)

// machineDecoder reads MAME style lists of <machine> or <game> records
// carrying description, year, manufacturer and rom children. MAME, FBNeo,
// Pleasuredome and the generic fallback all use it.
type machineDecoder struct {
	system func(headerName string) string
	decoder
	sizes sizePolicy
	// describe keeps the full description text rather than the record name.
	describe bool
}

func fixedSystem(name string) func(string) string {
	return func(string) string { return name }
}

func newMAMEArcade(refs *reference.Data, opts Options) Decoder {
	return &machineDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectMAMEArcade},
		system:  fixedSystem("Arcade"),
		sizes:   sizeNullable,
	}
}

func newMAMEMess(refs *reference.Data, opts Options) Decoder {
	return &machineDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectMAMEMess},
		system:  fixedSystem("MESS"),
		sizes:   sizeNullable,
	}
}

func newPleasuredome(refs *reference.Data, opts Options) Decoder {
	return &machineDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectPleasuredome},
		system:  fixedSystem("Arcade"),
		sizes:   sizeNullable,
	}
}

func newFBNeo(refs *reference.Data, opts Options) Decoder {
	return &machineDecoder{
		decoder:  decoder{refs: refs, opts: opts, dialect: signature.DialectFBNeo},
		system:   fbneoSystem,
		sizes:    sizeNullable,
		describe: true,
	}
}

func newGeneric(refs *reference.Data, opts Options) Decoder {
	return &machineDecoder{
		decoder: decoder{refs: refs, opts: opts, dialect: signature.DialectGeneric},
		system:  func(name string) string { return name },
		sizes:   sizeGeneric,
	}
}

// fbneoSystem turns "FinalBurn Neo - Neo Geo Games" into "Neo Geo".
func fbneoSystem(headerName string) string {
	system := headerName
	if _, after, found := strings.Cut(headerName, " - "); found {
		system = after
		if i := strings.Index(system, " - "); i >= 0 {
			system = system[:i]
		}
	}
	system = strings.TrimSuffix(system, " Games")
	return strings.TrimSpace(system)
}

func (d *machineDecoder) Decode(doc *xmlquery.Node) (*signature.Catalog, error) {
	cat := &signature.Catalog{}
	readHeader(doc, cat, false)
	system := d.system(cat.Name)

	for i, n := range records(doc, "machine", "game") {
		g, err := d.machine(n, system)
		if err := d.keep(cat, i, g, err); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

func (d *machineDecoder) machine(n *xmlquery.Node, system string) (signature.Game, error) {
	name, err := requireName(n)
	if err != nil {
		return signature.Game{}, err
	}

	g := signature.Game{
		Name:        name,
		Description: name,
		System:      system,
	}

	for _, a := range n.Attr {
		switch key := strings.ToLower(a.Name.Local); key {
		case "sourcefile", "romof":
			g.Flags.AddString(key, a.Value)
		case "cloneof":
			g.CloneOf = a.Value
			g.Flags.AddString(key, a.Value)
		}
	}

	for _, c := range elements(n) {
		switch strings.ToLower(c.Data) {
		case "description":
			if err := d.describeMachine(&g, c.InnerText()); err != nil {
				return signature.Game{}, err
			}
		case "year":
			g.Year = c.InnerText()
		case "manufacturer":
			g.Publisher = c.InnerText()
		case "rom":
			g.Roms = append(g.Roms, readRom(c, d.dialect, d.sizes))
		default:
			g.Flags.Add(c.Data, nodeValue(c))
		}
	}
	return g, nil
}

// describeMachine takes the title from a description such as
// "Street Fighter II (World 910522)" and resolves any countries listed in
// the first parenthesized group.
func (d *machineDecoder) describeMachine(g *signature.Game, desc string) error {
	if d.describe {
		g.Description = desc
	}
	if !strings.Contains(desc, "(") {
		g.Name = desc
		return nil
	}

	parts := strings.Split(desc, " (")
	g.Name = strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return nil
	}

	details := strings.TrimRight(parts[1], ")")
	countries, err := resolveAll(d.refs.Countries, details, ",")
	if err != nil {
		return err
	}
	for code, cname := range countries {
		if g.Country == nil {
			g.Country = make(map[string]string, len(countries))
		}
		if _, dup := g.Country[code]; !dup {
			g.Country[code] = cname
		}
	}
	return nil
}
