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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/go-datsig/pkg/helpers/syncutil"
	"github.com/ZaparooProject/go-datsig/pkg/signature"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "DATSIG_CFG"
	FormatJSON    = "json"
	FormatTable   = "table"
)

// ErrSchemaMismatch is returned when a config file was written for a
// different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	LogFile string `toml:"log_file,omitempty"`
	// ErrorReportingDSN sends logged errors to this Sentry DSN when set.
	ErrorReportingDSN string `toml:"error_reporting_dsn,omitempty" validate:"omitempty,url"`
	Scan              Scan   `toml:"scan,omitempty"`
	Output            Output `toml:"output"`
	Parse             Parse  `toml:"parse"`
	ConfigSchema      int    `toml:"config_schema"`
	DebugLogging      bool   `toml:"debug_logging"`
}

type Parse struct {
	CompanionDBDir string `toml:"companion_db_dir,omitempty"`
	// Dialects limits sniffing to the named dialects. Empty allows all.
	Dialects []string `toml:"dialects,omitempty,multiline" validate:"dive,dialect"`
	Workers  int      `toml:"workers" validate:"min=1,max=64"`
}

type Output struct {
	Format string `toml:"format" validate:"oneof=json table"`
	Path   string `toml:"path,omitempty"`
	Pretty bool   `toml:"pretty"`
}

type Scan struct {
	RomsDir        string `toml:"roms_dir,omitempty"`
	FollowSymlinks bool   `toml:"follow_symlinks"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Parse: Parse{
		Workers: 4,
	},
	Output: Output{
		Format: FormatJSON,
		Pretty: true,
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dialect", func(fl validator.FieldLevel) bool {
		_, ok := signature.ParseDialect(fl.Field().String())
		return ok
	})
	return v
}

// Validate checks vals against the field constraints.
//
//nolint:gocritic // config struct copied for immutability
func Validate(vals Values) error {
	if err := validate.Struct(vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type Instance struct {
	fs       afero.Fs
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file at cfgPath, or the path in the DATSIG_CFG
// environment variable when cfgPath is empty. A missing file is created
// with the defaults. With neither set, the defaults are used as is.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(fs afero.Fs, cfgPath string, defaults Values) (*Instance, error) {
	if cfgPath == "" {
		cfgPath = os.Getenv(CfgEnv)
		log.Debug().Msgf("env config path: %s", cfgPath)
	}

	cfg := Instance{
		fs:       fs,
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if cfgPath == "" {
		if err := Validate(cfg.vals); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if ok, err := afero.Exists(fs, cfgPath); err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	} else if !ok {
		log.Info().Msg("saving new default config to disk")

		err := fs.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := afero.ReadFile(c.fs, c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	// This ensures fields not present in the file retain their default values.
	newVals := c.defaults
	newVals.Parse.Dialects = slices.Clone(c.defaults.Parse.Dialects)
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	if err := Validate(newVals); err != nil {
		return err
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(c.fs, c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// LogFilePath is where the rotating log is written, or "" for no file.
func (c *Instance) LogFilePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.LogFile
}

func (c *Instance) ErrorReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReportingDSN
}

func (c *Instance) Workers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Parse.Workers
}

func (c *Instance) SetWorkers(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals := c.vals
	vals.Parse.Workers = n
	if err := Validate(vals); err != nil {
		return err
	}
	c.vals.Parse.Workers = n
	return nil
}

func (c *Instance) CompanionDBDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Parse.CompanionDBDir
}

func (c *Instance) SetCompanionDBDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Parse.CompanionDBDir = dir
}

// Dialects returns the sniffing allow-list. Names were checked on load.
func (c *Instance) Dialects() []signature.Dialect {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]signature.Dialect, 0, len(c.vals.Parse.Dialects))
	for _, name := range c.vals.Parse.Dialects {
		if d, ok := signature.ParseDialect(name); ok {
			out = append(out, d)
		}
	}
	return out
}

func (c *Instance) OutputFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.Format
}

func (c *Instance) SetOutputFormat(format string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	vals := c.vals
	vals.Output.Format = format
	if err := Validate(vals); err != nil {
		return err
	}
	c.vals.Output.Format = format
	return nil
}

func (c *Instance) OutputPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.Path
}

func (c *Instance) SetOutputPath(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Output.Path = p
}

func (c *Instance) OutputPretty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Output.Pretty
}

func (c *Instance) RomsDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scan.RomsDir
}

func (c *Instance) SetRomsDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Scan.RomsDir = dir
}

func (c *Instance) FollowSymlinks() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scan.FollowSymlinks
}
