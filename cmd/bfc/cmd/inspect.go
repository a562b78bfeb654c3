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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/internal/dump"
	"github.com/bfcompile/bfcompile/parser"
	"github.com/bfcompile/bfcompile/report"
)

func newTokensCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dump.ParseFormat(format)
			if err != nil {
				return err
			}
			file, err := readSource(args[0])
			if err != nil {
				return err
			}
			tokens := parser.Lex(file.Name(), file.Contents())
			a.logger.Debug("lexed", "file", file.Name(), "tokens", len(tokens))
			return dump.Tokens(cmd.OutOrStdout(), tokens, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

func newASTCommand(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "ast FILE",
		Short: "Print the syntax tree of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dump.ParseFormat(format)
			if err != nil {
				return err
			}
			style, err := a.cfg.DiagnosticStyle()
			if err != nil {
				return err
			}
			file, err := readSource(args[0])
			if err != nil {
				return err
			}

			tree, err := parser.Parse(file.Name(), parser.Lex(file.Name(), file.Contents()), nil)
			if err != nil {
				var r report.Report
				r.AddError(err, func(string) *ast.FileInfo { return file })
				fmt.Fprint(cmd.ErrOrStderr(), r.Render(style))
				return errReported
			}
			a.logger.Debug("parsed", "file", file.Name(), "nodes", tree.Len())
			return dump.Tree(cmd.OutOrStdout(), tree.Root(), f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

// readSource reads a tape-language source file.
func readSource(path string) (*ast.FileInfo, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ast.NewFileInfo(path, parser.StripBOM(data)), nil
}
