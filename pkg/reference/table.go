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

package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/cases"
)

// ErrInvalidReference is returned when a table entry redirects to a code
// that does not exist in the same table.
var ErrInvalidReference = errors.New("invalid reference")

// Source opens the raw text of a table. It is called at most once per table.
type Source func() (io.ReadCloser, error)

// Item is a single country or language entry.
type Item struct {
	Code     string
	Name     string
	Redirect string
}

type row struct {
	Code string `csv:"code"`
	Name string `csv:"name"`
}

// lazy loads a value from a Source on first use. Concurrent first callers
// block until the single load completes; later callers read the frozen
// result.
type lazy[T any] struct {
	val   T
	err   error
	open  Source
	parse func(io.Reader) (T, error)
	once  sync.Once
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		if l.open == nil {
			l.err = errors.New("no source configured")
			return
		}
		rc, err := l.open()
		if err != nil {
			l.err = err
			return
		}
		defer func() {
			if cerr := rc.Close(); cerr != nil && l.err == nil {
				l.err = cerr
			}
		}()
		l.val, l.err = l.parse(rc)
	})
	return l.val, l.err
}

// readRows decodes "key,value" lines. Blank lines, lines that do not split
// into exactly two non-empty fields and lines with an unterminated quoted
// field are skipped. Quotes inside a field are kept as written.
func readRows(r io.Reader) ([]row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}

	var sb strings.Builder
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(strings.TrimSpace(line), ",")
		if len(fields) != 2 {
			continue
		}
		code := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[1])
		if code == "" || name == "" || openQuote(code) || openQuote(name) {
			continue
		}
		sb.WriteString(code)
		sb.WriteByte(',')
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		return nil, nil
	}

	cr := csv.NewReader(strings.NewReader(sb.String()))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = 2

	var rows []row
	if err := gocsv.UnmarshalCSVWithoutHeaders(cr, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode table rows: %w", err)
	}
	for i := range rows {
		rows[i].Code = strings.TrimSpace(rows[i].Code)
		rows[i].Name = strings.TrimSpace(rows[i].Name)
	}
	return rows, nil
}

// openQuote reports whether field opens a quoted field it never closes,
// which would swallow the lines after it.
func openQuote(field string) bool {
	return strings.HasPrefix(field, `"`) &&
		(len(field) < 2 || !strings.HasSuffix(field, `"`))
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

type tableIndex struct {
	exact  map[string]int
	byCode map[string]int
	byName map[string]int
	items  []Item
}

func parseTable(r io.Reader) (*tableIndex, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	idx := &tableIndex{
		items:  make([]Item, 0, len(rows)),
		exact:  make(map[string]int, len(rows)),
		byCode: make(map[string]int, len(rows)),
		byName: make(map[string]int, len(rows)),
	}
	for _, rw := range rows {
		name, redirect, _ := strings.Cut(rw.Name, "|")
		it := Item{
			Code:     rw.Code,
			Name:     strings.TrimSpace(name),
			Redirect: strings.TrimSpace(redirect),
		}
		i := len(idx.items)
		idx.items = append(idx.items, it)

		if _, ok := idx.exact[it.Code]; !ok {
			idx.exact[it.Code] = i
		}
		if _, ok := idx.byCode[fold(it.Code)]; !ok {
			idx.byCode[fold(it.Code)] = i
		}
		if _, ok := idx.byName[fold(it.Name)]; !ok && it.Name != "" {
			idx.byName[fold(it.Name)] = i
		}
	}
	return idx, nil
}

// Table resolves country or language tokens to a canonical code and name.
// The backing text is loaded on first use.
type Table struct {
	data lazy[*tableIndex]
	name string
}

func NewTable(name string, open Source) *Table {
	return &Table{
		name: name,
		data: lazy[*tableIndex]{open: open, parse: parseTable},
	}
}

// NewTableFromString builds a table over in-memory text.
func NewTableFromString(name, text string) *Table {
	return NewTable(name, stringSource(text))
}

func (t *Table) Name() string {
	return t.name
}

// Items returns the loaded entries in file order.
func (t *Table) Items() ([]Item, error) {
	idx, err := t.data.get()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s table: %w", t.name, err)
	}
	return idx.items, nil
}

// HasCode reports whether code is present exactly as written, case
// included. Display names are not considered.
func (t *Table) HasCode(code string) bool {
	idx, err := t.data.get()
	if err != nil {
		return false
	}
	_, ok := idx.exact[code]
	return ok
}

// Resolve looks token up as a code and then as a display name, ignoring
// case. An entry with a redirect resolves to the redirect target's own code
// and name; only one hop is followed. A redirect to a missing code fails
// with ErrInvalidReference.
func (t *Table) Resolve(token string) (Item, bool, error) {
	idx, err := t.data.get()
	if err != nil {
		return Item{}, false, fmt.Errorf("failed to load %s table: %w", t.name, err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Item{}, false, nil
	}

	i, ok := idx.exact[token]
	if !ok {
		i, ok = idx.byCode[fold(token)]
	}
	if !ok {
		i, ok = idx.byName[fold(token)]
	}
	if !ok {
		return Item{}, false, nil
	}

	it := idx.items[i]
	if it.Redirect == "" {
		return Item{Code: it.Code, Name: it.Name}, true, nil
	}

	ti, ok := idx.exact[it.Redirect]
	if !ok {
		ti, ok = idx.byCode[fold(it.Redirect)]
	}
	if !ok {
		return Item{}, false, fmt.Errorf(
			"%w: %s entry %q redirects to unknown code %q",
			ErrInvalidReference, t.name, it.Code, it.Redirect,
		)
	}
	target := idx.items[ti]
	return Item{Code: target.Code, Name: target.Name}, true, nil
}

func stringSource(text string) Source {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(text)), nil
	}
}
