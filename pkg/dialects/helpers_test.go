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

import "github.com/ZaparooProject/go-datsig/pkg/reference"

// syntheticRefs builds reference tables with the given country rows and a
// small fixed set of everything else.
func syntheticRefs(countries string) *reference.Data {
	return &reference.Data{
		Countries:   reference.NewTableFromString("country", countries),
		Languages:   reference.NewTableFromString("language", "en,English\nde,German\n"),
		Copyright:   reference.NewDictionaryFromString("copyright", "PD,Public Domain\n"),
		Development: reference.NewDictionaryFromString("development", "beta,Beta\nproto,Prototype\n"),
		Systems:     reference.NewListFromString("systems", "A500\n"),
		Video:       reference.NewListFromString("video", "PAL\nNTSC\n"),
	}
}
