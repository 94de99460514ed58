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

package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var logWriter io.Writer = io.Discard

// LogWriter returns the writer InitLogging set up, so other sinks can be
// added next to it.
func LogWriter() io.Writer {
	return logWriter
}

// LogSettings is the part of the config logging needs.
type LogSettings interface {
	LogFilePath() string
	DebugLogging() bool
}

// InitLogging points the global logger at a rotating log file, when one is
// configured, plus any extra writers. With neither, logging is discarded.
func InitLogging(cfg LogSettings, writers []io.Writer) error {
	var logWriters []io.Writer

	if p := cfg.LogFilePath(); p != "" {
		err := os.MkdirAll(filepath.Dir(p), 0o750)
		if err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logWriters = append(logWriters, &lumberjack.Logger{
			Filename:   p,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}

	if len(writers) > 0 {
		logWriters = append(logWriters, writers...)
	}
	if len(logWriters) == 0 {
		logWriters = append(logWriters, io.Discard)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logWriter = io.MultiWriter(logWriters...)
	log.Logger = log.Output(logWriter).
		With().Timestamp().Caller().Logger()

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return nil
}
