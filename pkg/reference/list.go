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

package reference

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// List is a newline separated set of names matched exactly, case included.
type List struct {
	data lazy[map[string]struct{}]
	name string
}

func NewList(name string, open Source) *List {
	return &List{
		name: name,
		data: lazy[map[string]struct{}]{open: open, parse: parseList},
	}
}

func NewListFromString(name, text string) *List {
	return NewList(name, stringSource(text))
}

func parseList(r io.Reader) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	return set, nil
}

func (l *List) Contains(s string) bool {
	set, err := l.data.get()
	if err != nil {
		return false
	}
	_, ok := set[s]
	return ok
}

func (l *List) Len() int {
	set, err := l.data.get()
	if err != nil {
		return 0
	}
	return len(set)
}

// Dictionary maps a short code to its description, e.g. "PD" to
// "Public Domain".
type Dictionary struct {
	data lazy[*dictIndex]
	name string
}

type dictIndex struct {
	entries map[string]string
	folded  map[string]string
}

func NewDictionary(name string, open Source) *Dictionary {
	return &Dictionary{
		name: name,
		data: lazy[*dictIndex]{open: open, parse: parseDictionary},
	}
}

func NewDictionaryFromString(name, text string) *Dictionary {
	return NewDictionary(name, stringSource(text))
}

func parseDictionary(r io.Reader) (*dictIndex, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	idx := &dictIndex{
		entries: make(map[string]string, len(rows)),
		folded:  make(map[string]string, len(rows)),
	}
	for _, rw := range rows {
		if _, ok := idx.entries[rw.Code]; ok {
			continue
		}
		idx.entries[rw.Code] = rw.Name
		if _, ok := idx.folded[fold(rw.Code)]; !ok {
			idx.folded[fold(rw.Code)] = rw.Code
		}
	}
	return idx, nil
}

// Lookup matches key exactly and returns its description.
func (d *Dictionary) Lookup(key string) (string, bool) {
	idx, err := d.data.get()
	if err != nil {
		return "", false
	}
	desc, ok := idx.entries[key]
	return desc, ok
}

// LookupFold matches key ignoring case and returns the key as written in
// the table along with its description.
func (d *Dictionary) LookupFold(key string) (code, desc string, ok bool) {
	idx, err := d.data.get()
	if err != nil {
		return "", "", false
	}
	code, ok = idx.folded[fold(key)]
	if !ok {
		return "", "", false
	}
	return code, idx.entries[code], true
}
