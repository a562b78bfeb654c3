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

// Package dump prints token sequences and syntax trees for debugging, as
// plain text, YAML or JSON.
package dump

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/walk"
)

// Format is an output format for dumps.
type Format int

const (
	Text Format = iota
	YAML
	JSON
)

// ParseFormat converts the name of a format, as printed by [Format.String],
// back into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return Text, nil
	case "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	default:
		return 0, fmt.Errorf("unknown dump format %q", s)
	}
}

// String implements [fmt.Stringer].
func (f Format) String() string {
	switch f {
	case Text:
		return "text"
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("dump.Format(%d)", int(f))
	}
}

type token struct {
	Kind   string `yaml:"kind"`
	Lexeme string `yaml:"lexeme"`
	Line   int    `yaml:"line"`
	Col    int    `yaml:"col"`
}

func (t *token) value() map[string]any {
	return map[string]any{"kind": t.Kind, "lexeme": t.Lexeme, "line": t.Line, "col": t.Col}
}

// node is the dump record of a syntax node. ExprCont chains are flattened:
// an Expr lists all of its ops, in order, in Ops.
type node struct {
	Symbol   string  `yaml:"symbol"`
	Lexeme   string  `yaml:"lexeme,omitempty"`
	Depth    int     `yaml:"depth"`
	Line     int     `yaml:"line"`
	Col      int     `yaml:"col"`
	Ops      []*node `yaml:"ops,omitempty"`
	Children []*node `yaml:"children,omitempty"`

	// The JSON value of this record, set once its children are complete.
	value map[string]any
}

// finish builds n.value from the values of its children, which must already
// be finished.
func (n *node) finish() {
	v := map[string]any{"symbol": n.Symbol, "depth": n.Depth, "line": n.Line, "col": n.Col}
	if n.Lexeme != "" {
		v["lexeme"] = n.Lexeme
	}
	if len(n.Ops) > 0 {
		v["ops"] = values(n.Ops)
	}
	if len(n.Children) > 0 {
		v["children"] = values(n.Children)
	}
	n.value = v
}

func values(nodes []*node) []any {
	list := make([]any, len(nodes))
	for i, n := range nodes {
		list[i] = n.value
	}
	return list
}

// Tokens writes tokens to w, one per line or as a list.
func Tokens(w io.Writer, tokens []ast.Token, format Format) error {
	records := make([]*token, len(tokens))
	for i, tok := range tokens {
		records[i] = &token{Kind: tok.Kind.Name(), Lexeme: tok.Kind.Lexeme(), Line: tok.Pos.Line, Col: tok.Pos.Col}
	}

	switch format {
	case Text:
		for _, tok := range records {
			if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%s\n", tok.Line, tok.Col, tok.Kind, tok.Lexeme); err != nil {
				return err
			}
		}
		return nil
	case YAML:
		return writeYAML(w, records)
	case JSON:
		list := make([]any, len(records))
		for i, tok := range records {
			list[i] = tok.value()
		}
		return writeJSON(w, list)
	default:
		return fmt.Errorf("unknown dump format %v", format)
	}
}

// Tree writes the tree rooted at root to w. ExprCont nodes are left out:
// the ops of an Expr are listed together, so the output grows linearly with
// the program. The text format prints one node per line, indented by its
// nesting.
func Tree(w io.Writer, root ast.Node, format Format) error {
	if format == Text {
		return writeTreeText(w, root)
	}

	// Build the records without recursion. Values are finished on exit, so
	// every child is finished before its parent.
	var top *node
	var stack []*node
	err := walk.EnterAndExit(root,
		func(n ast.Node) error {
			if n.Symbol() == ast.SymExprCont && len(stack) > 0 {
				// Its ops belong to the enclosing Expr.
				stack = append(stack, stack[len(stack)-1])
				return nil
			}
			rec := &node{Symbol: n.Symbol().String(), Depth: n.Depth(), Line: n.Pos().Line, Col: n.Pos().Col}
			if n.Symbol().IsTerminal() {
				rec.Lexeme = n.Symbol().TokenKind().Lexeme()
			}
			switch {
			case len(stack) == 0:
				top = rec
			case n.Symbol() == ast.SymOp:
				parent := stack[len(stack)-1]
				parent.Ops = append(parent.Ops, rec)
			default:
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, rec)
			}
			stack = append(stack, rec)
			return nil
		},
		func(ast.Node) error {
			// A flattened ExprCont shares its record with the one below it.
			if last := len(stack) - 1; last == 0 || stack[last] != stack[last-1] {
				stack[last].finish()
			}
			stack = stack[:len(stack)-1]
			return nil
		},
	)
	if err != nil {
		return err
	}
	if top == nil {
		return errors.New("dump: empty tree")
	}

	switch format {
	case YAML:
		return writeYAML(w, top)
	case JSON:
		return writeJSON(w, top.value)
	default:
		return fmt.Errorf("unknown dump format %v", format)
	}
}

func writeTreeText(w io.Writer, root ast.Node) error {
	var level int
	return walk.EnterAndExit(root,
		func(n ast.Node) error {
			if n.Symbol() == ast.SymExprCont {
				// Ops of a chain are printed as siblings.
				return nil
			}
			indent := strings.Repeat("  ", level)
			level++
			var err error
			if n.Symbol().IsTerminal() {
				_, err = fmt.Fprintf(w, "%s%v %q %d:%d\n", indent, n.Symbol(), n.Symbol().TokenKind().Lexeme(), n.Pos().Line, n.Pos().Col)
			} else {
				_, err = fmt.Fprintf(w, "%s%v %d:%d\n", indent, n.Symbol(), n.Pos().Line, n.Pos().Col)
			}
			return err
		},
		func(n ast.Node) error {
			if n.Symbol() != ast.SymExprCont {
				level--
			}
			return nil
		},
	)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(w io.Writer, v any) error {
	value, err := structpb.NewValue(v)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(value)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
