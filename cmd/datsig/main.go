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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZaparooProject/go-datsig/internal/telemetry"
	"github.com/ZaparooProject/go-datsig/pkg/cli"
	"github.com/ZaparooProject/go-datsig/pkg/config"
	"github.com/ZaparooProject/go-datsig/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	fs := afero.NewOsFs()

	cfg, err := config.NewConfig(fs, *flags.Config, config.BaseDefaults)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := flags.Post(cfg); err != nil {
		return err
	}

	err = helpers.InitLogging(cfg, []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	err = telemetry.Init(telemetry.Options{
		DSN:     cfg.ErrorReportingDSN(),
		Release: config.AppName + "@" + config.AppVersion,
		Roots:   reportRoots(fs, cfg, flags.Args()),
	})
	if err != nil {
		log.Warn().Err(err).Msg("error reporting unavailable")
	}
	defer telemetry.Close()

	dialect, err := flags.ForcedDialect()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := &cli.Runner{
		Fs:             fs,
		Stdout:         os.Stdout,
		Cfg:            cfg,
		Dialect:        dialect,
		OnCatalogError: telemetry.CatalogError,
	}
	err = runner.Run(ctx, flags.Args())
	if errors.Is(err, cli.ErrNoInput) {
		_, _ = fmt.Fprintf(os.Stderr, "usage: %s [flags] catalog...\n", config.AppName)
	}
	if err != nil {
		log.Debug().Err(err).Msg("run finished with error")
	}
	return err
}

// reportRoots lists the directories error reports must not reveal: the ROM
// and database export directories and every catalog location given.
func reportRoots(fs afero.Fs, cfg *config.Instance, args []string) map[string]string {
	roots := make(map[string]string, len(args)+2)
	for _, a := range args {
		dir := a
		if info, err := fs.Stat(a); err != nil || !info.IsDir() {
			dir = filepath.Dir(a)
		}
		roots[dir] = telemetry.LabelCatalogs
	}
	if d := cfg.CompanionDBDir(); d != "" {
		roots[d] = telemetry.LabelCompanion
	}
	if d := cfg.RomsDir(); d != "" {
		roots[d] = telemetry.LabelRoms
	}
	return roots
}
