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

package tags

import (
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
)

// Category is a kind of metadata a tag segment can carry. Categories combine
// as a bit set.
type Category uint16

const (
	CategoryDemo Category = 1 << iota
	CategoryCountry
	CategoryLanguage
	CategoryYear
	CategorySystemVariant
	CategoryVideo
	CategoryCopyright
	CategoryDevelopmentStatus
	CategoryMediaType
	CategoryMediaLabel
	CategoryDumpFlags
)

// Has reports whether every category in o is set in c.
func (c Category) Has(o Category) bool {
	return c&o == o
}

var categoryNames = []struct {
	name string
	cat  Category
}{
	{"demo", CategoryDemo},
	{"country", CategoryCountry},
	{"language", CategoryLanguage},
	{"year", CategoryYear},
	{"system", CategorySystemVariant},
	{"video", CategoryVideo},
	{"copyright", CategoryCopyright},
	{"development", CategoryDevelopmentStatus},
	{"media", CategoryMediaType},
	{"label", CategoryMediaLabel},
	{"flags", CategoryDumpFlags},
}

func (c Category) String() string {
	if c == 0 {
		return "none"
	}
	parts := make([]string, 0, 2)
	for _, cn := range categoryNames {
		if c&cn.cat != 0 {
			parts = append(parts, cn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Profile selects which tests a dialect runs and how region segments are
// read.
type Profile struct {
	// RegionSeparators splits a segment carrying several countries or
	// languages, e.g. "-" for "US-GB" or "," for "USA, Europe".
	RegionSeparators string
	Tests            Category
	// StrictCodes requires the first region entry to be a code written
	// exactly as in the table, and dictionary and media keywords to match
	// case-sensitively.
	StrictCodes bool
	// StopAtDisc ends tag scanning at the first "Disc N" segment; that
	// segment and everything after it are left unread.
	StopAtDisc bool
}

var (
	// ProfileTOSEC runs every test with TOSEC's case-sensitive codes.
	ProfileTOSEC = Profile{
		Tests: CategoryDemo | CategoryCountry | CategoryLanguage | CategoryYear |
			CategorySystemVariant | CategoryVideo | CategoryCopyright |
			CategoryDevelopmentStatus | CategoryMediaType | CategoryMediaLabel |
			CategoryDumpFlags,
		RegionSeparators: "-",
		StrictCodes:      true,
	}

	// ProfileDisc reads No-Intro, Redump and RetroAchievements style titles
	// such as "Game (USA, Europe) (En,Fr) (Disc 1)".
	ProfileDisc = Profile{
		Tests:            CategoryDemo | CategoryCountry | CategoryLanguage | CategoryYear,
		RegionSeparators: ",",
		StopAtDisc:       true,
	}
)

// State accumulates what has been decoded from one title. Each category is
// set by the first segment that matches it; later matches are ignored.
type State struct {
	Country           map[string]string
	Language          map[string]string
	DumpFlags         signature.Flags
	err               error
	CountryString     string
	LanguageString    string
	Year              string
	Publisher         string
	SystemVariant     string
	Video             string
	Copyright         string
	DevelopmentStatus string
	MediaString       string
	MediaLabel        string
	Demo              signature.DemoType
	MediaType         signature.RomType
	found             Category
}

// Found returns the categories decoded so far.
func (s *State) Found() Category {
	return s.found
}

// Err returns the first reference table error hit while decoding.
func (s *State) Err() error {
	return s.err
}

func (s *State) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Classifier applies a Profile's tests against reference tables.
type Classifier struct {
	refs    *reference.Data
	profile Profile
}

func NewClassifier(refs *reference.Data, profile Profile) *Classifier {
	return &Classifier{refs: refs, profile: profile}
}

func (c *Classifier) Profile() Profile {
	return c.profile
}

// Classify runs the profile's segment tests on seg and returns the
// categories it satisfied. Media label and dump flag tests are not run
// here; see ClassifyLabel and ClassifyFlag.
func (c *Classifier) Classify(seg string, st *State) Category {
	return c.ClassifyOnly(seg, st, c.profile.Tests)
}

// ClassifyOnly is Classify restricted to the tests in tests.
func (c *Classifier) ClassifyOnly(seg string, st *State, tests Category) Category {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return 0
	}

	want := func(cat Category) bool {
		return tests&cat != 0 && st.found&cat == 0
	}
	var got Category
	mark := func(cat Category) {
		st.found |= cat
		got |= cat
	}

	if want(CategoryDemo) {
		if d, ok := ParseDemo(seg); ok {
			st.Demo = d
			mark(CategoryDemo)
			return got
		}
	}

	if want(CategoryCountry) {
		if m, ok := c.region(seg, c.refs.Countries, st); ok {
			st.Country = m
			st.CountryString = seg
			mark(CategoryCountry)
		}
	}

	if want(CategoryLanguage) {
		if m, ok := c.region(seg, c.refs.Languages, st); ok {
			st.Language = m
			st.LanguageString = seg
			mark(CategoryLanguage)
		}
	}

	if want(CategoryYear) && IsYear(seg) {
		st.Year = seg
		mark(CategoryYear)
	}

	if want(CategorySystemVariant) && c.refs.Systems.Contains(seg) {
		st.SystemVariant = seg
		mark(CategorySystemVariant)
	}

	if want(CategoryVideo) && c.refs.Video.Contains(seg) {
		st.Video = seg
		mark(CategoryVideo)
	}

	if want(CategoryCopyright) {
		if _, ok := c.refs.Copyright.Lookup(seg); ok {
			st.Copyright = seg
			mark(CategoryCopyright)
		}
	}

	if want(CategoryDevelopmentStatus) {
		if code, ok := c.devStatus(seg); ok {
			st.DevelopmentStatus = code
			mark(CategoryDevelopmentStatus)
		}
	}

	if want(CategoryMediaType) {
		if t, ok := MediaKeyword(seg, c.profile.StrictCodes); ok {
			st.MediaType = t
			st.MediaString = seg
			mark(CategoryMediaType)
		}
	}

	return got
}

func (c *Classifier) devStatus(seg string) (string, bool) {
	if c.profile.StrictCodes {
		if _, ok := c.refs.Development.Lookup(seg); ok {
			return seg, true
		}
		return "", false
	}
	code, _, ok := c.refs.Development.LookupFold(seg)
	return code, ok
}

// region reads seg as one or more countries or languages. The first entry
// decides whether the segment is a region at all; every entry that
// resolves is then added to the result.
func (c *Classifier) region(seg string, table *reference.Table, st *State) (map[string]string, bool) {
	parts := splitAny(seg, c.profile.RegionSeparators)
	if len(parts) == 0 {
		return nil, false
	}

	if c.profile.StrictCodes {
		if !table.HasCode(parts[0]) {
			return nil, false
		}
	} else {
		_, ok, err := table.Resolve(parts[0])
		if err != nil {
			st.setErr(err)
			return nil, false
		}
		if !ok {
			return nil, false
		}
	}

	m := make(map[string]string, len(parts))
	for _, p := range parts {
		it, ok, err := table.Resolve(p)
		if err != nil {
			st.setErr(err)
			continue
		}
		if !ok {
			continue
		}
		if _, dup := m[it.Code]; !dup {
			m[it.Code] = it.Name
		}
	}
	if len(m) == 0 {
		return nil, false
	}
	return m, true
}

// ClassifyLabel treats seg as a free-text media label, such as a disk's
// title, when it is the last tag segment and nothing else claimed it. It
// is rejected if it repeats a value already decoded for another field.
func (c *Classifier) ClassifyLabel(seg string, st *State) bool {
	if c.profile.Tests&CategoryMediaLabel == 0 || st.found&CategoryMediaLabel != 0 {
		return false
	}
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return false
	}
	for _, v := range []string{
		st.Publisher,
		st.SystemVariant,
		st.Video,
		st.CountryString,
		st.Copyright,
		st.LanguageString,
		st.DevelopmentStatus,
		st.MediaString,
	} {
		if v != "" && v == seg {
			return false
		}
	}
	st.MediaLabel = seg
	st.found |= CategoryMediaLabel
	return true
}

// ClassifyFlag records a bracketed dump flag. The first value seen for a
// code is kept.
func (c *Classifier) ClassifyFlag(seg string, st *State) bool {
	if c.profile.Tests&CategoryDumpFlags == 0 {
		return false
	}
	code, value, ok := ParseDumpFlag(seg)
	if !ok {
		return false
	}
	st.DumpFlags.AddString(code, value)
	st.found |= CategoryDumpFlags
	return true
}

// Scan classifies tok.Tags[from:] left to right, then offers the last tag
// segment as a media label if no test consumed it, then reads every flag
// segment. Segments before from are treated as already consumed.
func (c *Classifier) Scan(tok Tokens, st *State, from int) {
	lastConsumed := true
	for i := from; i < len(tok.Tags); i++ {
		seg := tok.Tags[i]
		if c.profile.StopAtDisc && IsDiscMarker(seg) {
			break
		}
		got := c.Classify(seg, st)
		if i == len(tok.Tags)-1 {
			lastConsumed = got != 0
		}
	}

	if !lastConsumed {
		c.ClassifyLabel(tok.Last(), st)
	}

	for _, flag := range tok.Flags {
		c.ClassifyFlag(flag, st)
	}
}

// Positional reads the segments a TOSEC name keeps in fixed slots: an
// optional demo marker, the release date, then the publisher. The date slot
// is consumed even when it does not parse. It returns the index of the
// first segment left for Scan.
func (c *Classifier) Positional(tok Tokens, st *State) int {
	i := 0
	if i < len(tok.Tags) {
		if d, ok := ParseDemo(tok.Tags[i]); ok {
			st.Demo = d
			st.found |= CategoryDemo
			i++
		}
	}
	if i < len(tok.Tags) {
		if IsYear(tok.Tags[i]) {
			st.Year = tok.Tags[i]
			st.found |= CategoryYear
		}
		i++
	}
	if i < len(tok.Tags) {
		st.Publisher = tok.Tags[i]
		i++
	}
	return i
}

// DecodePositional is Decode for names that start with Positional slots.
func (c *Classifier) DecodePositional(raw string) (Tokens, *State) {
	tok := Tokenize(raw)
	st := &State{}
	c.Scan(tok, st, c.Positional(tok, st))
	return tok, st
}

// Decode tokenizes raw and scans every tag and flag segment.
func (c *Classifier) Decode(raw string) (Tokens, *State) {
	tok := Tokenize(raw)
	st := &State{}
	c.Scan(tok, st, 0)
	return tok, st
}

func splitAny(s, seps string) []string {
	var parts []string
	if seps == "" {
		parts = []string{s}
	} else {
		parts = strings.FieldsFunc(s, func(r rune) bool {
			return strings.ContainsRune(seps, r)
		})
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
