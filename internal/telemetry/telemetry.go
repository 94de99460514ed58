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

// Package telemetry sends catalog failures and errors logged by datsig to a
// Sentry project the user configures. Catalog and ROM directories are
// replaced by labels and user names are stripped from paths before an event
// leaves the machine.
package telemetry

import (
	"cmp"
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ZaparooProject/go-datsig/pkg/helpers"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/getsentry/sentry-go"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const flushTimeout = 2 * time.Second

// Root labels used for configured directories.
const (
	LabelRoms      = "<roms>"
	LabelCompanion = "<companion-db>"
	LabelCatalogs  = "<catalogs>"
)

var (
	enabled      bool
	sentryWriter *sentryzerolog.Writer
	closeOnce    sync.Once
	scrub        = newScrubber(nil)

	homePathRe    = regexp.MustCompile(`(?i)/home/[^/]+/`)
	usersPathRe   = regexp.MustCompile(`(?i)/Users/[^/]+/`)
	windowsUserRe = regexp.MustCompile(`(?i)[a-zA-Z]:\\Users\\[^\\]+\\`)
)

// Options configures error reporting.
type Options struct {
	// Roots maps directories to the label that replaces them in events,
	// e.g. the ROM directory to LabelRoms.
	Roots   map[string]string
	DSN     string
	Release string
}

// Init starts error reporting. An empty DSN leaves it disabled. Call it
// after helpers.InitLogging.
//
//nolint:gocritic // options are read once
func Init(opts Options) error {
	if opts.DSN == "" {
		log.Debug().Msg("error reporting disabled")
		return nil
	}

	scrub = newScrubber(opts.Roots)

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          opts.Release,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		ServerName:       "",
		MaxBreadcrumbs:   0,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return sanitizeEvent(event)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
	})

	sentryWriter, err = sentryzerolog.NewWithHub(sentry.CurrentHub(), sentryzerolog.Options{
		Levels:       []zerolog.Level{zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel},
		FlushTimeout: flushTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry zerolog writer: %w", err)
	}

	log.Logger = log.Output(zerolog.MultiLevelWriter(
		helpers.LogWriter(),
		sentryWriter,
	)).With().Timestamp().Caller().Logger()

	enabled = true
	log.Info().Int("roots", len(opts.Roots)).Msg("error reporting enabled")
	return nil
}

// CatalogError reports a catalog that failed to load, tagged with the
// catalog's scrubbed path and the dialect whose decoder failed. An empty
// dialect means the failure happened before a dialect was chosen.
func CatalogError(path string, dialect signature.Dialect, err error) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range catalogTags(scrub, path, dialect) {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func catalogTags(s *scrubber, path string, dialect signature.Dialect) map[string]string {
	name := dialect.String()
	if name == "" {
		name = "unknown"
	}
	return map[string]string{
		"dialect": name,
		"catalog": s.catalog(path),
		"format":  strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}
}

// Close flushes pending events and shuts down Sentry. Safe to call more
// than once.
func Close() {
	if !enabled {
		return
	}
	closeOnce.Do(func() {
		_ = sentryWriter.Close()
		sentry.Flush(flushTimeout)
	})
}

func Enabled() bool {
	return enabled
}

type root struct {
	re    *regexp.Regexp
	path  string
	label string
}

// scrubber replaces configured directories with their labels and then
// strips user names from whatever paths remain.
type scrubber struct {
	roots []root
}

func newScrubber(roots map[string]string) *scrubber {
	s := &scrubber{}
	for p, label := range roots {
		if p == "" {
			continue
		}
		clean := filepath.Clean(p)
		if clean == "." || clean == string(filepath.Separator) {
			continue
		}
		s.roots = append(s.roots, root{
			re:    regexp.MustCompile(regexp.QuoteMeta(clean) + `([/\\\s:'"]|$)`),
			path:  clean,
			label: label,
		})
	}
	// nested roots: the longest prefix wins
	slices.SortFunc(s.roots, func(a, b root) int {
		return cmp.Compare(len(b.path), len(a.path))
	})
	return s
}

func (s *scrubber) path(text string) string {
	if text == "" {
		return text
	}
	for _, r := range s.roots {
		text = r.re.ReplaceAllString(text, r.label+"${1}")
	}
	text = homePathRe.ReplaceAllString(text, "/home/<user>/")
	text = usersPathRe.ReplaceAllString(text, "/Users/<user>/")
	text = windowsUserRe.ReplaceAllString(text, "C:\\Users\\<user>\\")
	return text
}

// catalog renders a catalog path for a tag. Paths outside every configured
// root are reduced to their file name.
func (s *scrubber) catalog(p string) string {
	clean := filepath.Clean(p)
	for _, r := range s.roots {
		if rel, err := filepath.Rel(r.path, clean); err == nil && !strings.HasPrefix(rel, "..") {
			return r.label + "/" + filepath.ToSlash(rel)
		}
	}
	return filepath.Base(clean)
}

func sanitizePath(path string) string {
	return scrub.path(path)
}

// sanitizeEvent removes private paths from an event before it is sent.
func sanitizeEvent(event *sentry.Event) *sentry.Event {
	event.ServerName = ""

	for i := range event.Exception {
		event.Exception[i].Value = sanitizePath(event.Exception[i].Value)
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				frame.AbsPath = sanitizePath(frame.AbsPath)
				frame.Filename = sanitizePath(frame.Filename)
			}
		}
	}

	event.Message = sanitizePath(event.Message)

	for k, v := range event.Extra {
		if s, ok := v.(string); ok {
			event.Extra[k] = sanitizePath(s)
		}
	}
	for k, v := range event.Tags {
		event.Tags[k] = sanitizePath(v)
	}

	return event
}
