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

package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

// Reference holds the bundled lookup tables used to decode catalog titles.
// Country and language tables are "code,name" lines where the name may carry
// a "|code" redirect; copyright and development status tables are
// "code,description" lines; system and video tables are plain lists.
//
//go:embed reference/*.txt
var Reference embed.FS

const ReferenceDir = "reference"

const (
	CountryFile           = "Country.txt"
	LanguageFile          = "Language.txt"
	CopyrightFile         = "Copyright.txt"
	DevelopmentStatusFile = "DevelopmentStatus.txt"
	SystemsFile           = "Systems.txt"
	VideoFile             = "Video.txt"
)

// ReferenceFS returns the bundled tables rooted at the reference directory.
func ReferenceFS() (fs.FS, error) {
	sub, err := fs.Sub(Reference, ReferenceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference data: %w", err)
	}
	return sub, nil
}
