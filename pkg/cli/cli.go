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

package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/ZaparooProject/go-datsig/pkg/config"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
)

type Flags struct {
	set     *flag.FlagSet
	Config  *string
	Out     *string
	Format  *string
	DB      *string
	Scan    *string
	Dialect *string
	Workers *int
	Debug   *bool
	Version *bool
}

// SetupFlags defines the CLI flags on the default flag set.
func SetupFlags() *Flags {
	return NewFlags(flag.CommandLine)
}

// NewFlags defines the CLI flags on set.
func NewFlags(set *flag.FlagSet) *Flags {
	return &Flags{
		set: set,
		Config: set.String(
			"config",
			"",
			"path to config file (default $"+config.CfgEnv+")",
		),
		Out: set.String(
			"out",
			"",
			"write the report to this file instead of stdout",
		),
		Format: set.String(
			"format",
			"",
			"report format: json or table",
		),
		DB: set.String(
			"db",
			"",
			"directory holding No-Intro database exports",
		),
		Scan: set.String(
			"scan",
			"",
			"hash every file under this directory and match it against the catalogs",
		),
		Dialect: set.String(
			"dialect",
			"",
			"decode every catalog as this dialect instead of detecting it",
		),
		Workers: set.Int(
			"workers",
			0,
			"number of files processed in parallel",
		),
		Debug: set.Bool(
			"debug",
			false,
			"enable debug logging",
		),
		Version: set.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Args returns the catalog paths left after the flags.
func (f *Flags) Args() []string {
	return f.set.Args()
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre() {
	if !f.set.Parsed() {
		_ = f.set.Parse(os.Args[1:])
	}

	if *f.Version {
		_, _ = fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		os.Exit(0)
	}
}

// Post applies flags that override config values. Logging is allowed.
func (f *Flags) Post(cfg *config.Instance) error {
	if f.isFlagPassed("workers") {
		if err := cfg.SetWorkers(*f.Workers); err != nil {
			return fmt.Errorf("invalid -workers: %w", err)
		}
	}
	if f.isFlagPassed("format") {
		if err := cfg.SetOutputFormat(*f.Format); err != nil {
			return fmt.Errorf("invalid -format: %w", err)
		}
	}
	if f.isFlagPassed("out") {
		cfg.SetOutputPath(*f.Out)
	}
	if f.isFlagPassed("db") {
		cfg.SetCompanionDBDir(*f.DB)
	}
	if f.isFlagPassed("scan") {
		cfg.SetRomsDir(*f.Scan)
	}
	if *f.Debug {
		cfg.SetDebugLogging(true)
	}
	return nil
}

// ForcedDialect returns the dialect named by -dialect, or "" when the flag
// was not given.
func (f *Flags) ForcedDialect() (signature.Dialect, error) {
	if *f.Dialect == "" {
		return "", nil
	}
	d, ok := signature.ParseDialect(*f.Dialect)
	if !ok {
		return "", fmt.Errorf("unknown dialect %q", *f.Dialect)
	}
	return d, nil
}
