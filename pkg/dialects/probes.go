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

	"github.com/antchfx/xmlquery"
)

// Probes look at a handful of header fields only. A missing node is a
// non-match.

func headerEquals(doc *xmlquery.Node, field, want string) bool {
	v, ok := headerText(doc, field)
	return ok && strings.EqualFold(strings.TrimSpace(v), want)
}

func headerHasPrefix(doc *xmlquery.Node, field, prefix string) bool {
	v, ok := headerText(doc, field)
	return ok && strings.HasPrefix(strings.TrimSpace(v), prefix)
}

func probeTOSEC(doc *xmlquery.Node) bool {
	return headerEquals(doc, "category", "TOSEC")
}

func probeMAMEArcade(doc *xmlquery.Node) bool {
	return headerEquals(doc, "name", "MAME") && headerHasPrefix(doc, "description", "MAME Arcade")
}

func probeMAMEMess(doc *xmlquery.Node) bool {
	return headerEquals(doc, "name", "MESS") && headerHasPrefix(doc, "description", "MAME Home")
}

func probeNoIntro(doc *xmlquery.Node) bool {
	return headerEquals(doc, "homepage", "No-Intro")
}

func probeRedump(doc *xmlquery.Node) bool {
	return headerEquals(doc, "homepage", "redump.org")
}

func probeWHDLoad(doc *xmlquery.Node) bool {
	r := root(doc)
	return r != nil && r.Data == "whdbooter"
}

func probeRetroAchievements(doc *xmlquery.Node) bool {
	return headerEquals(doc, "category", "RetroAchievements")
}

func probeFBNeo(doc *xmlquery.Node) bool {
	return headerHasPrefix(doc, "author", "FinalBurn Neo")
}

func probePureDOSDAT(doc *xmlquery.Node) bool {
	return headerEquals(doc, "homepage", "Pure DOS DAT")
}

func probePleasuredome(doc *xmlquery.Node) bool {
	for _, field := range []string{"homepage", "url"} {
		if v, ok := headerText(doc, field); ok && strings.Contains(strings.ToLower(v), "pleasuredome") {
			return true
		}
	}
	return false
}

// probeGeneric accepts any datafile whose first machine has a description
// and a rom.
func probeGeneric(doc *xmlquery.Node) bool {
	if header(doc) == nil {
		return false
	}
	machines := records(doc, "machine")
	if len(machines) == 0 {
		return false
	}
	return child(machines[0], "description") != nil && child(machines[0], "rom") != nil
}
