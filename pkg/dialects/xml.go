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
	"net/url"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/antchfx/xmlquery"
)

func attr(n *xmlquery.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func elements(n *xmlquery.Node) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func child(n *xmlquery.Node, name string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && strings.EqualFold(c.Data, name) {
			return c
		}
	}
	return nil
}

func childText(n *xmlquery.Node, name string) (string, bool) {
	c := child(n, name)
	if c == nil {
		return "", false
	}
	return c.InnerText(), true
}

// root returns the document element.
func root(doc *xmlquery.Node) *xmlquery.Node {
	if doc == nil {
		return nil
	}
	if doc.Type == xmlquery.ElementNode {
		return doc
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

// header returns /datafile/header or nil.
func header(doc *xmlquery.Node) *xmlquery.Node {
	r := root(doc)
	if r == nil || r.Data != "datafile" {
		return nil
	}
	return child(r, "header")
}

func headerText(doc *xmlquery.Node, field string) (string, bool) {
	return childText(header(doc), field)
}

// records returns the children of the document element named one of names.
func records(doc *xmlquery.Node, names ...string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for _, n := range elements(root(doc)) {
		for _, name := range names {
			if strings.EqualFold(n.Data, name) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// readHeader copies the recognised header fields onto cat. Unknown header
// elements are ignored.
func readHeader(doc *xmlquery.Node, cat *signature.Catalog, assumeHTTP bool) {
	for _, n := range elements(header(doc)) {
		text := n.InnerText()
		switch strings.ToLower(n.Data) {
		case "id":
			cat.ID = text
		case "name":
			cat.Name = text
		case "description":
			cat.Description = text
		case "category":
			cat.Category = text
		case "version":
			cat.Version = text
		case "author":
			cat.Author = text
		case "email":
			cat.Email = text
		case "homepage":
			cat.Homepage = text
		case "url":
			cat.URL = normalizeURL(text, assumeHTTP)
		}
	}
}

// normalizeURL returns raw if it is an absolute URL, or "" otherwise. With
// assumeHTTP a missing scheme is taken to be http.
func normalizeURL(raw string, assumeHTTP bool) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if assumeHTTP && !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	return raw
}

// sizePolicy is how a dialect treats a rom size that is missing or not a
// number: as zero, or as unknown.
type sizePolicy struct {
	absentZero  bool
	invalidZero bool
}

var (
	sizeZero     = sizePolicy{absentZero: true, invalidZero: true}
	sizeNullable = sizePolicy{}
	sizeGeneric  = sizePolicy{invalidZero: true}
)

func (p sizePolicy) parse(v string, present bool) *uint64 {
	var zero uint64
	if !present {
		if p.absentZero {
			return &zero
		}
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
	if err != nil {
		if p.invalidZero {
			return &zero
		}
		return nil
	}
	return &n
}

// readRom captures a rom element's recognised attributes. Checksums are
// lowercased; any other attribute goes to Attributes, first one wins.
func readRom(n *xmlquery.Node, source signature.Dialect, sizes sizePolicy) signature.Rom {
	rom := signature.Rom{SignatureSource: source}
	sizeSeen := false
	for _, a := range n.Attr {
		v := a.Value
		switch strings.ToLower(a.Name.Local) {
		case "name":
			rom.Name = v
		case "size":
			sizeSeen = true
			rom.Size = sizes.parse(v, true)
		case "crc":
			rom.CRC = strings.ToLower(v)
		case "md5":
			rom.MD5 = strings.ToLower(v)
		case "sha1":
			rom.SHA1 = strings.ToLower(v)
		case "sha256":
			rom.SHA256 = strings.ToLower(v)
		case "status":
			rom.Status = v
		default:
			rom.Attributes.AddString(a.Name.Local, v)
		}
	}
	if !sizeSeen {
		rom.Size = sizes.parse("", false)
	}
	return rom
}

// nodeValue converts an element into a loosely typed value. A bare element
// becomes its text; one with attributes or children becomes a map, with
// repeated children collected into a list and any text under "text".
func nodeValue(n *xmlquery.Node) signature.Value {
	kids := elements(n)
	if len(n.Attr) == 0 && len(kids) == 0 {
		return signature.StringValue(n.InnerText())
	}

	m := make(map[string]signature.Value, len(n.Attr)+len(kids))
	for _, a := range n.Attr {
		if _, ok := m[a.Name.Local]; !ok {
			m[a.Name.Local] = signature.StringValue(a.Value)
		}
	}

	order := make([]string, 0, len(kids))
	grouped := make(map[string][]signature.Value, len(kids))
	for _, k := range kids {
		if _, ok := grouped[k.Data]; !ok {
			order = append(order, k.Data)
		}
		grouped[k.Data] = append(grouped[k.Data], nodeValue(k))
	}
	for _, name := range order {
		if _, taken := m[name]; taken {
			continue
		}
		vs := grouped[name]
		if len(vs) == 1 {
			m[name] = vs[0]
		} else {
			m[name] = signature.ListValue(vs)
		}
	}

	if len(kids) == 0 {
		if text := strings.TrimSpace(n.InnerText()); text != "" {
			if _, taken := m["text"]; !taken {
				m["text"] = signature.StringValue(text)
			}
		}
	}
	return signature.MapValue(m)
}
