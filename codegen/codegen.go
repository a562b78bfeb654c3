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

// Package codegen turns syntax trees into source code for a host language.
//
// Generation is a single pre-order walk of the tree. Every terminal becomes
// one statement, every loop becomes a native while loop on the current cell,
// and the statements are indented according to the depth of their node. The
// result is wrapped in the target's entry point, after the declarations of
// the tape and the pointer.
package codegen

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/walk"
)

// Code is a generated program.
type Code struct {
	// The target language Text is written in.
	Target Target
	// The name of the file the program was generated from.
	Source string

	text string
}

// String returns the generated source text.
func (c *Code) String() string {
	return c.text
}

// Bytes returns the generated source text.
func (c *Code) Bytes() []byte {
	return []byte(c.text)
}

// WriteTo implements [io.WriterTo].
func (c *Code) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, c.text)
	return int64(n), err
}

// Generate produces a program equivalent to the tree rooted at root.
//
// It only fails if opts is invalid. root must be the Start node of a tree
// built by the parser; Generate panics if the tree is ill-formed.
func Generate(root ast.Node, opts Options) (*Code, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if root.Symbol() != ast.SymStart {
		panic(fmt.Sprintf("codegen: root must be %v, got %v", ast.SymStart, root))
	}
	opts = opts.withDefaults()

	g := &generator{opts: opts}
	switch opts.Target {
	case TargetC:
		g.dialect = cDialect{}
	case TargetGo:
		g.dialect = goDialect{}
	}

	if err := walk.EnterAndExit(root, g.enter, g.exit); err != nil {
		return nil, err
	}

	var out strings.Builder
	g.dialect.file(&out, commentSafe(root.Tree().Filename()), g)
	return &Code{
		Target: opts.Target,
		Source: root.Tree().Filename(),
		text:   out.String(),
	}, nil
}

// features records which parts of the runtime a program needs, so that the
// prologue only declares what the body uses.
type features struct {
	input, output bool
	// Whether any statement reads or writes a cell.
	cells bool
}

type generator struct {
	opts    Options
	dialect dialect
	used    features
	body    strings.Builder
}

func (g *generator) enter(n ast.Node) error {
	switch sym := n.Symbol(); sym {
	case ast.SymLoop:
		g.used.cells = true
		g.line(n.Depth(), g.dialect.loopOpen())
	case ast.SymJumpForward, ast.SymJumpBackward:
		// Emitted by the enclosing loop.
	default:
		if !sym.IsTerminal() {
			return nil
		}
		kind := sym.TokenKind()
		switch kind {
		case ast.Input:
			g.used.input = true
		case ast.Output:
			g.used.output = true
		}
		if kind != ast.MoveLeft && kind != ast.MoveRight {
			g.used.cells = true
		}
		g.line(n.Depth(), g.dialect.statement(kind, g.opts))
	}
	return nil
}

func (g *generator) exit(n ast.Node) error {
	if n.Symbol() == ast.SymLoop {
		g.line(n.Depth(), g.dialect.loopClose())
	}
	return nil
}

// line writes one statement of the program body. Depth 0 is the body of the
// entry point.
func (g *generator) line(depth int, text string) {
	g.body.WriteString(strings.Repeat(g.dialect.indent(), depth+1))
	g.body.WriteString(text)
	g.body.WriteByte('\n')
}

// dialect is the syntax of one target language.
type dialect interface {
	indent() string
	statement(kind ast.TokenKind, opts Options) string
	loopOpen() string
	loopClose() string
	// file writes the complete program: everything that must precede the
	// body, the body itself, and everything that must follow it.
	file(out *strings.Builder, source string, g *generator)
}

// commentSafe renders a file name for a one-line comment in either target.
// Names that could end the comment or the line are quoted, with "*/" split.
func commentSafe(name string) string {
	risky := strings.Contains(name, "*/") || strings.ContainsFunc(name, func(r rune) bool {
		return !unicode.IsPrint(r)
	})
	if !risky {
		return name
	}
	return strings.ReplaceAll(strconv.Quote(name), "*/", `*\/`)
}
