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
	"fmt"
)

// ValueKind is the shape held by a Value.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindMap
	KindList
)

// Value is a loosely typed leaf of pass-through metadata: a string, a nested
// map or a list. Dialect extras that have no field in the model are carried
// as Values and are not interpreted further.
type Value struct {
	m    map[string]Value
	str  string
	list []Value
	kind ValueKind
}

func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

func MapValue(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}

func ListValue(l []Value) Value {
	return Value{kind: KindList, list: l}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

// Str returns the string held by v, if it holds one.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) Map() (map[string]Value, bool) {
	return v.m, v.kind == KindMap
}

func (v Value) List() ([]Value, bool) {
	return v.list, v.kind == KindList
}

func (v Value) String() string {
	switch v.kind {
	case KindMap:
		return fmt.Sprint(v.m)
	case KindList:
		return fmt.Sprint(v.list)
	default:
		return v.str
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindMap:
		return json.Marshal(v.m)
	case KindList:
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.str)
	}
}

// Flags is an open-ended, string-keyed bag of Values.
type Flags map[string]Value

// Add stores v under key unless the key is already present; the first write
// wins. It reports whether v was stored.
func (f *Flags) Add(key string, v Value) bool {
	if *f == nil {
		*f = make(Flags)
	}
	if _, ok := (*f)[key]; ok {
		return false
	}
	(*f)[key] = v
	return true
}

// AddString is Add for a plain string value.
func (f *Flags) AddString(key, s string) bool {
	return f.Add(key, StringValue(s))
}

// Str returns the string stored under key, or "" when the key is missing or
// holds a non-string value.
func (f Flags) Str(key string) string {
	v, ok := f[key]
	if !ok {
		return ""
	}
	s, _ := v.Str()
	return s
}
