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

import "strings"

// Dialect identifies the catalog convention a record was decoded from. The
// string values are the ones external tooling matches on.
type Dialect string

const (
	DialectTOSEC             Dialect = "TOSEC"
	DialectMAMEArcade        Dialect = "MAMEArcade"
	DialectMAMEMess          Dialect = "MAMEMess"
	DialectNoIntro           Dialect = "No-Intro"
	DialectRedump            Dialect = "Redump"
	DialectWHDLoad           Dialect = "WHDLoad"
	DialectRetroAchievements Dialect = "RetroAchievements"
	DialectFBNeo             Dialect = "FBNeo"
	DialectPureDOSDAT        Dialect = "PureDOSDAT"
	DialectPleasuredome      Dialect = "Pleasuredome"
	DialectGeneric           Dialect = "Generic"
)

// AllDialects lists every dialect in sniffing priority order.
var AllDialects = []Dialect{
	DialectTOSEC,
	DialectMAMEArcade,
	DialectMAMEMess,
	DialectNoIntro,
	DialectRedump,
	DialectWHDLoad,
	DialectRetroAchievements,
	DialectFBNeo,
	DialectPureDOSDAT,
	DialectPleasuredome,
	DialectGeneric,
}

// ParseDialect matches a dialect by its tag, ignoring case.
func ParseDialect(s string) (Dialect, bool) {
	for _, d := range AllDialects {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

func (d Dialect) String() string {
	return string(d)
}
