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

// Package cmd implements the commands of bfc.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bfcompile/bfcompile/internal/config"
)

// errReported is returned by commands that have already printed their
// errors. Execute only sets the exit code for it.
var errReported = errors.New("errors reported")

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs bfc with the process arguments.
func Execute() error {
	root := NewRootCommand()
	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// NewRootCommand returns the bfc command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "bfc",
		Short: "Translate tape-language programs into C or Go",
		Long: `bfc translates programs written in the eight-instruction tape language
into C or Go source code.

Only the characters < > + - . , [ ] are instructions; every other
character is a comment. Source files must have a .b or .bf extension.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "",
		fmt.Sprintf("config file (default: $%s, or %s in the working directory)",
			config.EnvVar, strings.Join(config.DefaultPaths, ", ")))
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newCompileCommand(a),
		newTokensCommand(a),
		newASTCommand(a),
		newVersionCommand(),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, path, err := config.Find(a.configPath, dir)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log.Format, level)
	if path != "" {
		a.logger.Debug("loaded config", "path", path)
	}
	return nil
}

func newLogger(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// checkExtension rejects files that are not tape-language sources.
func checkExtension(path string) error {
	switch filepath.Ext(path) {
	case ".b", ".bf":
		return nil
	default:
		return fmt.Errorf("invalid file format %q: only .b or .bf source files are accepted", path)
	}
}
