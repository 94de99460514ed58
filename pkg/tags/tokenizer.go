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

// Package tags decodes the metadata packed into catalog titles: parenthesized
// tag segments such as "(1990)(Ocean)(GB)" and bracketed dump flags such as
// "[cr Fairlight][a2]".
package tags

import "strings"

// Tokens is a title split into its parts, in document order.
type Tokens struct {
	Title string
	Tags  []string
	Flags []string
}

// Last returns the final tag segment, or "" when there is none.
func (t Tokens) Last() string {
	if len(t.Tags) == 0 {
		return ""
	}
	return t.Tags[len(t.Tags)-1]
}

// Tokenize splits raw into a bare title, parenthesized tag segments and
// bracketed flag segments. The title is the text before the first "(" or
// "[". Parentheses nest inside a tag segment. An unterminated segment runs
// to the end of the string. Empty segments are dropped.
func Tokenize(raw string) Tokens {
	const (
		stateOutside = iota
		stateInParen
		stateInBracket
	)

	tok := Tokens{
		Tags:  make([]string, 0, 8),
		Flags: make([]string, 0, 4),
	}

	state := stateOutside
	start := 0
	depth := 0
	titleEnd := -1

	for i := range len(raw) {
		char := raw[i]

		switch state {
		case stateOutside:
			switch char {
			case '(':
				if titleEnd < 0 {
					titleEnd = i
				}
				state = stateInParen
				start = i + 1
				depth = 1
			case '[':
				if titleEnd < 0 {
					titleEnd = i
				}
				state = stateInBracket
				start = i + 1
			}

		case stateInParen:
			switch char {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					tok.Tags = appendSegment(tok.Tags, raw[start:i])
					state = stateOutside
				}
			}

		case stateInBracket:
			if char == ']' {
				tok.Flags = appendSegment(tok.Flags, raw[start:i])
				state = stateOutside
			}
		}
	}

	switch state {
	case stateInParen:
		tok.Tags = appendSegment(tok.Tags, raw[start:])
	case stateInBracket:
		tok.Flags = appendSegment(tok.Flags, raw[start:])
	}

	if titleEnd < 0 {
		titleEnd = len(raw)
	}
	tok.Title = strings.TrimSpace(raw[:titleEnd])

	return tok
}

func appendSegment(segments []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return segments
	}
	return append(segments, s)
}

// StripExtension removes a trailing file extension from a rom name, leaving
// names whose last dot sits inside a tag segment untouched.
func StripExtension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name
	}
	if strings.ContainsAny(name[dot:], " )]") {
		return name
	}
	return name[:dot]
}
