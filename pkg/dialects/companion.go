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
	"io"
	"path"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/ZaparooProject/go-datsig/pkg/tags"
	"github.com/antchfx/xmlquery"
)

const companionMarker = " (DB Export)"

// CompanionFileName is the file name No-Intro gives the database export
// that accompanies a DAT with the given header name and version.
func CompanionFileName(name, version string) string {
	return name + companionMarker + " (" + version + ").xml"
}

// CompanionKey reduces a database export's file name to the name of the
// DAT it belongs to, so "Nintendo - NES (DB Export) (20240101).xml" and
// "Nintendo - NES (20240101).dat" share a key.
func CompanionKey(fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	return strings.Replace(base, companionMarker, "", 1)
}

// IsCompanionFile reports whether fileName looks like a database export.
func IsCompanionFile(fileName string) bool {
	return strings.Contains(fileName, companionMarker)
}

// CompanionRecord is one file entry of a database export together with the
// archive metadata of the game it belongs to.
type CompanionRecord struct {
	Size       *uint64
	ID         string
	GameID     string
	Name       string
	Region     string
	Languages  string
	Categories string
	Media      string
	FileID     string
	Extension  string
	CRC        string
	MD5        string
	SHA1       string
}

// RomName is the file name the export implies for this record.
func (r *CompanionRecord) RomName() string {
	if r.Extension == "" {
		return ""
	}
	if r.Media != "" {
		return r.Name + " (" + r.Media + ")." + r.Extension
	}
	return r.Name + "." + r.Extension
}

// Companion indexes a database export by file checksum.
type Companion struct {
	byMD5  map[string]*CompanionRecord
	bySHA1 map[string]*CompanionRecord
	count  int
}

// LoadCompanion parses a database export.
func LoadCompanion(r io.Reader) (*Companion, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWellFormed, err)
	}
	return NewCompanion(doc), nil
}

// NewCompanion indexes an already parsed database export.
func NewCompanion(doc *xmlquery.Node) *Companion {
	c := &Companion{
		byMD5:  make(map[string]*CompanionRecord),
		bySHA1: make(map[string]*CompanionRecord),
	}

	for _, g := range records(doc, "game") {
		base := CompanionRecord{}
		base.Name, _ = attr(g, "name")

		for _, item := range elements(g) {
			switch strings.ToLower(item.Data) {
			case "archive":
				readArchive(item, &base)
			case "source":
				for _, f := range elements(item) {
					if !strings.EqualFold(f.Data, "file") {
						continue
					}
					rec := base
					readCompanionFile(f, &rec)
					c.add(&rec)
				}
			}
		}
	}
	return c
}

func readArchive(n *xmlquery.Node, rec *CompanionRecord) {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Name.Local) {
		case "number":
			rec.ID = a.Value
		case "gameid1":
			rec.GameID = a.Value
		case "name":
			rec.Name = a.Value
		case "region":
			rec.Region = a.Value
		case "languages":
			rec.Languages = a.Value
		case "categories":
			rec.Categories = a.Value
		case "additional":
			rec.Media = a.Value
		}
	}
}

func readCompanionFile(n *xmlquery.Node, rec *CompanionRecord) {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Name.Local) {
		case "id":
			rec.FileID = a.Value
		case "extension":
			rec.Extension = a.Value
		case "size":
			rec.Size = sizeNullable.parse(a.Value, true)
		case "crc32":
			rec.CRC = strings.ToLower(a.Value)
		case "md5":
			rec.MD5 = strings.ToLower(a.Value)
		case "sha1":
			rec.SHA1 = strings.ToLower(a.Value)
		}
	}
}

func (c *Companion) add(rec *CompanionRecord) {
	added := false
	if rec.MD5 != "" {
		if _, dup := c.byMD5[rec.MD5]; !dup {
			c.byMD5[rec.MD5] = rec
			added = true
		}
	}
	if rec.SHA1 != "" {
		if _, dup := c.bySHA1[rec.SHA1]; !dup {
			c.bySHA1[rec.SHA1] = rec
			added = true
		}
	}
	if added {
		c.count++
	}
}

// Len is the number of indexed file records.
func (c *Companion) Len() int {
	if c == nil {
		return 0
	}
	return c.count
}

// Lookup finds the record for a rom by md5, then sha1.
func (c *Companion) Lookup(md5, sha1 string) (*CompanionRecord, bool) {
	if c == nil {
		return nil, false
	}
	if md5 != "" {
		if rec, ok := c.byMD5[strings.ToLower(md5)]; ok {
			return rec, true
		}
	}
	if sha1 != "" {
		if rec, ok := c.bySHA1[strings.ToLower(sha1)]; ok {
			return rec, true
		}
	}
	return nil, false
}

// enrich applies the companion record matched by any of g's roms. The
// export is authoritative for name, category, country and language.
func (d *decoder) enrich(g *signature.Game) error {
	if d.opts.Companion == nil {
		return nil
	}

	var matched *CompanionRecord
	for i := range g.Roms {
		rom := &g.Roms[i]
		rec, ok := d.opts.Companion.Lookup(rom.MD5, rom.SHA1)
		if !ok {
			continue
		}
		if rec.FileID != "" {
			rom.ID = rec.FileID
		}
		if rec.Media != "" {
			rom.RomTypeMedia = rec.Media
			if t, ok := tags.MediaKeyword(rec.Media, false); ok {
				rom.RomType = t
			}
		}
		if matched == nil {
			matched = rec
		}
	}
	if matched == nil {
		return nil
	}

	if matched.ID != "" {
		g.ID = matched.ID
	}
	if matched.GameID != "" {
		g.GameID = matched.GameID
	}
	if matched.Name != "" {
		g.Name = matched.Name
	}
	if matched.Categories != "" {
		g.Category = matched.Categories
	}
	if matched.Region != "" {
		countries, err := resolveAll(d.refs.Countries, matched.Region, ",")
		if err != nil {
			return err
		}
		g.Country = countries
		g.CountryString = matched.Region
	}
	if matched.Languages != "" {
		languages, err := resolveAll(d.refs.Languages, matched.Languages, ",")
		if err != nil {
			return err
		}
		g.Language = languages
		g.LanguageString = matched.Languages
	}
	return nil
}
