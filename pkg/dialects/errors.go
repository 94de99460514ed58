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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-datsig/pkg/signature"
)

var (
	// ErrNotWellFormed is returned when the input is not parseable XML.
	ErrNotWellFormed = errors.New("catalog is not well-formed XML")
	// ErrUnknownDialect is returned when no dialect probe matches.
	ErrUnknownDialect = errors.New("unknown catalog dialect")
	// ErrMalformedRecord marks a single game record missing a required
	// field. Decoders log and skip these.
	ErrMalformedRecord = errors.New("malformed catalog record")
)

// DecodeError is a failure inside a dialect decoder, after sniffing.
type DecodeError struct {
	Err     error
	Dialect signature.Dialect
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s catalog: %v", e.Dialect, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FailedDialect returns the dialect whose decoder produced err.
func FailedDialect(err error) (signature.Dialect, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Dialect, true
	}
	return "", false
}
