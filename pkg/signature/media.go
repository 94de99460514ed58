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
	"strconv"
	"strings"
	"unicode"
)

// MediaDetail is the decoded form of a media string like "Disc 2 of 3" or
// "Disk 1 Side B".
type MediaDetail struct {
	Media  *RomType `json:"Media,omitempty"`
	Number *int     `json:"Number,omitempty"`
	Count  *int     `json:"Count,omitempty"`
	Side   string   `json:"Side,omitempty"`
}

// ParseMediaDetail decodes a media string word by word. A media keyword is
// followed by its part number, "of" by the total count and "side" by the
// side letter. Numbers that fail to parse are left unset.
func ParseMediaDetail(s string) MediaDetail {
	var md MediaDetail
	pending := ""
	for _, word := range strings.Fields(s) {
		if pending == "" {
			lw := strings.ToLower(word)
			switch lw {
			case "of", "side":
				if lw == "side" && md.Media == nil {
					t := RomTypeSide
					md.Media = &t
				}
				pending = lw
			default:
				if t, ok := ParseRomType(word); ok && t != RomTypeSide {
					if md.Media == nil {
						md.Media = &t
					}
					pending = "number"
				}
			}
			continue
		}

		switch pending {
		case "number":
			if n, ok := parsePartNumber(word); ok {
				md.Number = &n
			}
		case "of":
			if n, ok := parsePartNumber(word); ok {
				md.Count = &n
			}
		case "side":
			md.Side = strings.TrimRightFunc(word, unicode.IsPunct)
		}
		pending = ""
	}
	return md
}

func parsePartNumber(word string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimRightFunc(word, unicode.IsPunct))
	if err != nil {
		return 0, false
	}
	return n, true
}
