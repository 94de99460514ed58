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

	"github.com/ZaparooProject/go-datsig/pkg/reference"
)

// resolveAll resolves every sep-separated entry of s against table and
// returns the matches keyed by code. Entries that resolve to nothing are
// ignored; a broken redirect is an error.
func resolveAll(table *reference.Table, s, sep string) (map[string]string, error) {
	var out map[string]string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		it, ok, err := table.Resolve(part)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		if _, dup := out[it.Code]; !dup {
			out[it.Code] = it.Name
		}
	}
	return out, nil
}
