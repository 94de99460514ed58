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

// Package dialects detects which catalog convention a DAT file follows and
// decodes it into a signature.Catalog.
package dialects

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ZaparooProject/go-datsig/pkg/reference"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Decoder turns a parsed document of one dialect into a catalog.
type Decoder interface {
	Decode(doc *xmlquery.Node) (*signature.Catalog, error)
}

// Registration pairs a dialect's structural probe with its decoder.
type Registration struct {
	Probe   func(doc *xmlquery.Node) bool
	New     func(refs *reference.Data, opts Options) Decoder
	Dialect signature.Dialect
}

// Options tunes a single parse.
type Options struct {
	// Refs defaults to the bundled reference tables.
	Refs *reference.Data
	// Companion enriches No-Intro and Redump records by checksum.
	Companion *Companion
	// Dialect skips sniffing when set.
	Dialect signature.Dialect
	// Allow restricts sniffing to these dialects when not empty.
	Allow      []signature.Dialect
	SourceMD5  string
	SourceSHA1 string
}

// registrations is in sniffing priority order. Several dialects share the
// same document shape, so the order decides which one wins.
var registrations = []Registration{
	{Dialect: signature.DialectTOSEC, Probe: probeTOSEC, New: newTOSEC},
	{Dialect: signature.DialectMAMEArcade, Probe: probeMAMEArcade, New: newMAMEArcade},
	{Dialect: signature.DialectMAMEMess, Probe: probeMAMEMess, New: newMAMEMess},
	{Dialect: signature.DialectNoIntro, Probe: probeNoIntro, New: newNoIntro},
	{Dialect: signature.DialectRedump, Probe: probeRedump, New: newRedump},
	{Dialect: signature.DialectWHDLoad, Probe: probeWHDLoad, New: newWHDLoad},
	{Dialect: signature.DialectRetroAchievements, Probe: probeRetroAchievements, New: newRetroAchievements},
	{Dialect: signature.DialectFBNeo, Probe: probeFBNeo, New: newFBNeo},
	{Dialect: signature.DialectPureDOSDAT, Probe: probePureDOSDAT, New: newPureDOSDAT},
	{Dialect: signature.DialectPleasuredome, Probe: probePleasuredome, New: newPleasuredome},
	{Dialect: signature.DialectGeneric, Probe: probeGeneric, New: newGeneric},
}

// Registrations returns the registered dialects in priority order.
func Registrations() []Registration {
	return slices.Clone(registrations)
}

func lookup(d signature.Dialect) (Registration, bool) {
	for _, r := range registrations {
		if r.Dialect == d {
			return r, true
		}
	}
	return Registration{}, false
}

// Sniff runs each probe in priority order and reports the first match.
func Sniff(doc *xmlquery.Node) (signature.Dialect, bool) {
	return sniff(doc, nil)
}

func sniff(doc *xmlquery.Node, allow []signature.Dialect) (signature.Dialect, bool) {
	for _, r := range registrations {
		if len(allow) > 0 && !slices.Contains(allow, r.Dialect) {
			continue
		}
		if r.Probe(doc) {
			return r.Dialect, true
		}
	}
	return "", false
}

// Parse reads a DAT document from r and decodes it.
func Parse(r io.Reader, opts Options) (*signature.Catalog, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWellFormed, err)
	}
	return ParseDocument(doc, opts)
}

// ParseDocument decodes an already parsed document.
func ParseDocument(doc *xmlquery.Node, opts Options) (*signature.Catalog, error) {
	dialect := opts.Dialect
	if dialect == "" {
		var ok bool
		dialect, ok = sniff(doc, opts.Allow)
		if !ok {
			return nil, ErrUnknownDialect
		}
		log.Debug().Str("dialect", dialect.String()).Msg("sniffed catalog dialect")
	}

	reg, ok := lookup(dialect)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, dialect)
	}

	if opts.Refs == nil {
		opts.Refs = reference.Default()
	}

	cat, err := reg.New(opts.Refs, opts).Decode(doc)
	if err != nil {
		return nil, &DecodeError{Dialect: dialect, Err: err}
	}

	cat.SourceType = dialect
	cat.SourceMD5 = strings.ToLower(opts.SourceMD5)
	cat.SourceSHA1 = strings.ToLower(opts.SourceSHA1)
	if cat.ID == "" {
		cat.ID = catalogID(dialect, cat.Name, cat.Version)
	}
	if cat.Games == nil {
		cat.Games = []signature.Game{}
	}
	return cat, nil
}

// catalogID derives a stable id for catalogs whose header carries none.
func catalogID(d signature.Dialect, name, version string) string {
	key := strings.Join([]string{"datsig", d.String(), name, version}, "/")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// decoder holds what every dialect decoder needs.
type decoder struct {
	refs    *reference.Data
	opts    Options
	dialect signature.Dialect
}

// keep folds one decoded game into cat. Malformed records are logged and
// dropped; any other error stops decoding.
func (d *decoder) keep(cat *signature.Catalog, idx int, g signature.Game, err error) error {
	if err != nil {
		if errors.Is(err, ErrMalformedRecord) {
			log.Warn().Err(err).
				Str("dialect", d.dialect.String()).
				Int("record", idx).
				Msg("skipping malformed record")
			return nil
		}
		return fmt.Errorf("record %d: %w", idx, err)
	}
	if g.Roms == nil {
		g.Roms = []signature.Rom{}
	}
	cat.AddGame(g)
	return nil
}

// requireName returns the record's name attribute or ErrMalformedRecord.
func requireName(n *xmlquery.Node) (string, error) {
	name, ok := attr(n, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: <%s> has no name", ErrMalformedRecord, n.Data)
	}
	return name, nil
}
