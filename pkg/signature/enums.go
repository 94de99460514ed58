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
	"fmt"
	"strings"
)

// DemoType classifies a game as retail or one of the demo subtypes.
type DemoType int

const (
	NotDemo DemoType = iota
	Demo
	DemoKiosk
	DemoPlayable
	DemoRolling
	DemoSlideshow
)

var demoNames = [...]string{
	NotDemo:       "NotDemo",
	Demo:          "demo",
	DemoKiosk:     "demo_kiosk",
	DemoPlayable:  "demo_playable",
	DemoRolling:   "demo_rolling",
	DemoSlideshow: "demo_slideshow",
}

func (d DemoType) String() string {
	if d < 0 || int(d) >= len(demoNames) {
		return fmt.Sprintf("DemoType(%d)", int(d))
	}
	return demoNames[d]
}

func (d DemoType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DemoType) UnmarshalText(b []byte) error {
	for i, name := range demoNames {
		if string(b) == name {
			*d = DemoType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown demo type: %q", string(b))
}

// RomType is the physical or logical medium a rom was dumped from.
type RomType int

const (
	RomTypeUnknown RomType = iota
	RomTypeDisc
	RomTypeDisk
	RomTypeFile
	RomTypePart
	RomTypeTape
	RomTypeSide
)

var romTypeNames = [...]string{
	RomTypeUnknown: "Unknown",
	RomTypeDisc:    "Disc",
	RomTypeDisk:    "Disk",
	RomTypeFile:    "File",
	RomTypePart:    "Part",
	RomTypeTape:    "Tape",
	RomTypeSide:    "Side",
}

func (t RomType) String() string {
	if t < 0 || int(t) >= len(romTypeNames) {
		return fmt.Sprintf("RomType(%d)", int(t))
	}
	return romTypeNames[t]
}

func (t RomType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RomType) UnmarshalText(b []byte) error {
	for i, name := range romTypeNames {
		if string(b) == name {
			*t = RomType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rom type: %q", string(b))
}

// ParseRomType matches a media keyword such as "Disc" or "tape", ignoring
// case. Unknown keywords return RomTypeUnknown and false.
func ParseRomType(word string) (RomType, bool) {
	for i, name := range romTypeNames {
		if i == int(RomTypeUnknown) {
			continue
		}
		if strings.EqualFold(word, name) {
			return RomType(i), true
		}
	}
	return RomTypeUnknown, false
}
