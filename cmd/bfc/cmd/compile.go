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

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/bfcompile/bfcompile"
	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/codegen"
	"github.com/bfcompile/bfcompile/report"
	"github.com/bfcompile/bfcompile/reporter"
)

type compileFlags struct {
	output   string
	target   string
	tapeSize int
	cellBits int
	eof      string
	style    string
	diff     bool
}

func newCompileCommand(a *app) *cobra.Command {
	var flags compileFlags
	cmd := &cobra.Command{
		Use:   "compile [flags] FILE|GLOB...",
		Short: "Translate source files into C or Go",
		Long: `Translate source files into C or Go.

Each FILE is written next to its source, with the extension of the target
language, unless -o names the output. Arguments containing glob characters
are expanded; "**" matches any number of directories.`,
		Example: `  bfc compile hello.bf
  bfc compile --target go -o hello.go hello.b
  bfc compile --diff 'examples/**/*.bf'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.compile(cmd, &flags, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", `output path, or "-" for stdout; only with a single input`)
	f.StringVar(&flags.target, "target", "", "target language: c or go")
	f.IntVar(&flags.tapeSize, "tape-size", 0, "number of cells on the tape")
	f.IntVar(&flags.cellBits, "cell-bits", 0, "cell width in bits: 8, 16 or 32")
	f.StringVar(&flags.eof, "eof", "", "what input stores at end of input: unchanged, zero or minus-one")
	f.StringVar(&flags.style, "style", "", "diagnostic style: simple, monochrome or colored")
	f.BoolVar(&flags.diff, "diff", false, "print a diff against the existing output instead of writing it")
	return cmd
}

func (a *app) compile(cmd *cobra.Command, flags *compileFlags, args []string) error {
	cfg := *a.cfg
	f := cmd.Flags()
	if f.Changed("target") {
		cfg.Codegen.Target = flags.target
	}
	if f.Changed("tape-size") {
		cfg.Codegen.TapeSize = flags.tapeSize
	}
	if f.Changed("cell-bits") {
		cfg.Codegen.CellBits = flags.cellBits
	}
	if f.Changed("eof") {
		cfg.Codegen.EOF = flags.eof
	}
	if f.Changed("style") {
		cfg.Diagnostics.Style = flags.style
	}
	opts, err := cfg.CodegenOptions()
	if err != nil {
		return err
	}
	style, err := cfg.DiagnosticStyle()
	if err != nil {
		return err
	}

	files, err := expandArgs(args)
	if err != nil {
		return err
	}
	if flags.output != "" && len(files) > 1 {
		return fmt.Errorf("-o can only be used with a single input, got %d", len(files))
	}
	a.logger.Debug("compiling", "files", len(files), "target", opts.Target, "cell_bits", opts.CellBits)

	var resolver bfcompile.Resolver = &bfcompile.SourceResolver{}
	if len(cfg.Compiler.SearchPaths) > 0 {
		resolver = bfcompile.CompositeResolver{
			resolver,
			&bfcompile.SourceResolver{SearchPaths: cfg.Compiler.SearchPaths},
		}
	}

	var (
		mu      sync.Mutex
		sources = make(map[string]*ast.FileInfo)
		errs    []reporter.ErrorWithPos
	)
	comp := bfcompile.Compiler{
		Resolver:       resolver,
		MaxParallelism: cfg.Compiler.MaxParallelism,
		Options:        opts,
		Reporter: reporter.NewReporter(func(err reporter.ErrorWithPos) error {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
			return nil
		}),
		OnSource: func(file *ast.FileInfo) {
			mu.Lock()
			defer mu.Unlock()
			sources[file.Name()] = file
		},
	}

	start := time.Now()
	results, err := comp.Compile(cmd.Context(), files...)
	if err != nil {
		slices.SortStableFunc(errs, func(x, y reporter.ErrorWithPos) int {
			px, py := x.GetPosition(), y.GetPosition()
			if c := strings.Compare(px.Filename, py.Filename); c != 0 {
				return c
			}
			switch {
			case px.Before(py):
				return -1
			case py.Before(px):
				return 1
			}
			return 0
		})
		lookup := func(name string) *ast.FileInfo { return sources[name] }

		var r report.Report
		for _, e := range errs {
			r.AddError(e, lookup)
		}
		if !errors.Is(err, reporter.ErrInvalidSource) {
			r.AddError(err, lookup)
		}
		fmt.Fprint(cmd.ErrOrStderr(), r.Render(style))
		return errReported
	}
	a.logger.Debug("compiled", "files", len(files), "elapsed", time.Since(start))

	seen := make(map[string]bool, len(results))
	for _, res := range results {
		if seen[res.Path] {
			continue
		}
		seen[res.Path] = true
		if err := a.emit(cmd.OutOrStdout(), flags, res); err != nil {
			return err
		}
	}
	return nil
}

// emit writes, prints or diffs the code generated for one file.
func (a *app) emit(stdout io.Writer, flags *compileFlags, res *bfcompile.Result) error {
	if flags.output == "-" {
		_, err := res.Code.WriteTo(stdout)
		return err
	}

	path := flags.output
	if path == "" {
		path = outputPath(res.Path, res.Code.Target)
	}
	if flags.diff {
		return writeDiff(stdout, path, res.Code.String())
	}
	if err := os.WriteFile(path, res.Code.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	a.logger.Info("wrote output", "source", res.Path, "output", path)
	return nil
}

// outputPath replaces the extension of a source file with the extension of
// target.
func outputPath(source string, target codegen.Target) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + target.Extension()
}

// writeDiff prints a unified diff from the file at path to code. Nothing is
// printed if they are the same. A missing file diffs as empty.
func writeDiff(w io.Writer, path, code string) error {
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(code),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, diff)
	return err
}

// expandArgs expands glob patterns among args, and checks that every file
// is a tape-language source. An argument naming an existing file is never
// treated as a pattern.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		if _, err := os.Stat(arg); err == nil {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		files = append(files, matches...)
	}
	for _, file := range files {
		if err := checkExtension(file); err != nil {
			return nil, err
		}
	}
	return files, nil
}
