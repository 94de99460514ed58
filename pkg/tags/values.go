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
	"regexp"
	"strings"
	"time"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
)

var demoKeywords = map[string]signature.DemoType{
	"demo":           signature.Demo,
	"demo-kiosk":     signature.DemoKiosk,
	"demo-playable":  signature.DemoPlayable,
	"demo-rolling":   signature.DemoRolling,
	"demo-slideshow": signature.DemoSlideshow,
}

// ParseDemo matches a demo marker such as "demo-kiosk" or "Demo". A
// comma-separated segment matches on its first entry.
func ParseDemo(seg string) (signature.DemoType, bool) {
	s := strings.ToLower(strings.TrimSpace(seg))
	if d, ok := demoKeywords[s]; ok {
		return d, true
	}
	first, _, found := strings.Cut(s, ",")
	if found {
		if d, ok := demoKeywords[strings.TrimSpace(first)]; ok {
			return d, true
		}
	}
	return signature.NotDemo, false
}

var (
	reCentury = regexp.MustCompile(`^(19|20)xx$`)
	reDecade  = regexp.MustCompile(`^(19|20)[0-9]x$`)
	reYear    = regexp.MustCompile(`^[0-9]{4}$`)
)

const dateLayout = "2006-01-02"

// IsYear reports whether seg is a release date in one of the forms catalogs
// use. Forms are tried in order: "19xx", "198x", a bare four digit year, a
// full date, a date with unknown digits written as x, and a year-month.
func IsYear(seg string) bool {
	s := strings.TrimSpace(seg)
	if len(s) < 4 {
		return false
	}

	switch {
	case reCentury.MatchString(s):
		return true
	case reDecade.MatchString(s):
		return true
	case reYear.MatchString(s):
		_, err := time.Parse("2006", s)
		return err == nil
	}

	if _, err := time.Parse(dateLayout, s); err == nil {
		return true
	}

	zeroed := strings.ReplaceAll(s, "x", "0")
	if _, err := time.Parse(dateLayout, zeroed); err == nil {
		return true
	}
	if _, err := time.Parse(dateLayout, zeroed+"-01"); err == nil {
		return true
	}
	return false
}

var dumpFlagNames = map[string]string{
	"cr": "cracked",
	"f":  "fixed",
	"h":  "hacked",
	"m":  "modified",
	"p":  "pirated",
	"t":  "trained",
	"tr": "translated",
	"o":  "overdump",
	"u":  "underdump",
	"v":  "virus",
	"b":  "bad dump",
	"a":  "alternate",
	"!":  "verified",
}

// DumpFlagName describes a dump flag code, e.g. "cr" is "cracked".
func DumpFlagName(code string) string {
	return dumpFlagNames[code]
}

// ParseDumpFlag splits a bracket segment into its flag code and the text
// after it. "cr Fairlight" gives ("cr", "Fairlight"), "a2" gives ("a", "2")
// and "!" gives ("!", ""). Codes match in any case and are returned in
// lower case. Segments whose leading word is not a known code are rejected.
func ParseDumpFlag(seg string) (code, value string, ok bool) {
	s := strings.TrimSpace(seg)
	if s == "" {
		return "", "", false
	}
	if s[0] == '!' {
		return "!", strings.TrimSpace(s[1:]), true
	}

	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	lead := strings.ToLower(s[:i])
	if _, known := dumpFlagNames[lead]; !known {
		return "", "", false
	}
	return lead, strings.TrimSpace(s[i:]), true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// MediaKeyword reports the media type named by the first word of seg.
// With strict set the word must be capitalised exactly as "Disc", "Disk",
// "File", "Part", "Side" or "Tape".
func MediaKeyword(seg string, strict bool) (signature.RomType, bool) {
	fields := strings.Fields(seg)
	if len(fields) == 0 {
		return signature.RomTypeUnknown, false
	}
	t, ok := signature.ParseRomType(fields[0])
	if !ok {
		return signature.RomTypeUnknown, false
	}
	if strict && fields[0] != t.String() {
		return signature.RomTypeUnknown, false
	}
	return t, true
}

// IsDiscMarker reports whether seg starts with the word "Disc", in any case,
// as in "Disc 1" or "disc 2 of 3".
func IsDiscMarker(seg string) bool {
	fields := strings.Fields(seg)
	return len(fields) > 0 && strings.EqualFold(fields[0], "disc")
}
