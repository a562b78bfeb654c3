// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the settings of the bfc command from a TOML or YAML
// file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/bfcompile/bfcompile/codegen"
	"github.com/bfcompile/bfcompile/report"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "BFC_CONFIG"

// DefaultPaths are searched, in order, when no config file is named.
var DefaultPaths = []string{"bfc.toml", "bfc.yaml", "bfc.yml"}

// ErrUnsupportedFormat is returned for config files whose extension is not
// .toml, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// Config holds the complete configuration of the bfc command.
type Config struct {
	Codegen     CodegenConfig     `toml:"codegen" yaml:"codegen"`
	Compiler    CompilerConfig    `toml:"compiler" yaml:"compiler"`
	Log         LogConfig         `toml:"log" yaml:"log"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
}

// CodegenConfig holds the shape of generated programs.
type CodegenConfig struct {
	Target   string `toml:"target" yaml:"target"`
	TapeSize int    `toml:"tape_size" yaml:"tape_size"`
	CellBits int    `toml:"cell_bits" yaml:"cell_bits"`
	EOF      string `toml:"eof" yaml:"eof"`
}

// CompilerConfig holds settings for the compiler driver.
type CompilerConfig struct {
	// Zero means one per CPU.
	MaxParallelism int      `toml:"max_parallelism" yaml:"max_parallelism"`
	SearchPaths    []string `toml:"search_paths" yaml:"search_paths"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// DiagnosticsConfig holds settings for how errors are shown.
type DiagnosticsConfig struct {
	Style string `toml:"style" yaml:"style"`
}

// Default returns the configuration used when there is no config file.
func Default() *Config {
	return &Config{
		Codegen: CodegenConfig{
			Target:   codegen.TargetC.String(),
			TapeSize: codegen.DefaultTapeSize,
			CellBits: 8,
			EOF:      codegen.EOFUnchanged.String(),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Diagnostics: DiagnosticsConfig{
			Style: report.Simple.String(),
		},
	}
}

// Load reads the config file at path. Settings the file leaves out keep
// their default values; settings the file has but Config does not are an
// error.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("failed to parse config %s: unknown setting %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}

	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Find loads the config file named by path, or by the BFC_CONFIG environment
// variable if path is empty, or else the first of DefaultPaths that exists
// in dir. If there is none, it returns the default configuration and an
// empty path.
func Find(path, dir string) (*Config, string, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		for _, p := range DefaultPaths {
			candidate := filepath.Join(dir, p)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	for i, p := range c.Compiler.SearchPaths {
		c.Compiler.SearchPaths[i] = os.ExpandEnv(p)
	}
}

// Validate checks every setting, and reports all the invalid ones.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.CodegenOptions(); err != nil {
		errs = append(errs, err)
	}
	if c.Compiler.MaxParallelism < 0 {
		errs = append(errs, fmt.Errorf("compiler.max_parallelism must not be negative, got %d", c.Compiler.MaxParallelism))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if _, err := report.ParseStyle(c.Diagnostics.Style); err != nil {
		errs = append(errs, fmt.Errorf("diagnostics.style: %w", err))
	}
	return errors.Join(errs...)
}

// CodegenOptions converts the [codegen] section into generator options.
func (c *Config) CodegenOptions() (codegen.Options, error) {
	target, err := codegen.ParseTarget(c.Codegen.Target)
	if err != nil {
		return codegen.Options{}, fmt.Errorf("codegen.target: %w", err)
	}
	eof, err := codegen.ParseEOF(c.Codegen.EOF)
	if err != nil {
		return codegen.Options{}, fmt.Errorf("codegen.eof: %w", err)
	}
	opts := codegen.Options{
		Target:   target,
		TapeSize: c.Codegen.TapeSize,
		CellBits: c.Codegen.CellBits,
		EOF:      eof,
	}
	if err := opts.Validate(); err != nil {
		return codegen.Options{}, fmt.Errorf("codegen: %w", err)
	}
	return opts, nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// DiagnosticStyle parses the configured diagnostic style.
func (c *Config) DiagnosticStyle() (report.Style, error) {
	return report.ParseStyle(c.Diagnostics.Style)
}
