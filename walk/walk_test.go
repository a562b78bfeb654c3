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

package walk_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/parser"
	"github.com/bfcompile/bfcompile/walk"
)

func mustParse(t *testing.T, src string) ast.Node {
	t.Helper()
	tree, err := parser.Parse("test.bf", parser.Lex("test.bf", []byte(src)), nil)
	require.NoError(t, err)
	return tree.Root()
}

func TestEnterAndExit(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "+[-]")
	var events []string
	err := walk.EnterAndExit(root,
		func(n ast.Node) error {
			events = append(events, "+"+n.Symbol().String())
			return nil
		},
		func(n ast.Node) error {
			events = append(events, "-"+n.Symbol().String())
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"+Start", "+Expr",
		"+Op", "+Increment", "-Increment", "-Op",
		"+ExprCont", "+Op", "+Loop",
		"+JumpForward", "-JumpForward",
		"+Expr", "+Op", "+Decrement", "-Decrement", "-Op", "-Expr",
		"+JumpBackward", "-JumpBackward",
		"-Loop", "-Op", "-ExprCont",
		"-Expr", "-Start",
	}, events)
}

func TestTerminalsInProgramOrder(t *testing.T) {
	t.Parallel()

	const src = ",[>+<-]>."
	var b strings.Builder
	err := walk.Terminals(mustParse(t, src), func(n ast.Node) error {
		b.WriteString(n.Symbol().TokenKind().Lexeme())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, src, b.String())
}

func TestStopAndSkip(t *testing.T) {
	t.Parallel()

	root := mustParse(t, "[+]-")

	stop := errors.New("stop")
	var seen int
	err := walk.Nodes(root, func(n ast.Node) error {
		seen++
		if n.Symbol() == ast.SymLoop {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 4, seen) // Start, Expr, Op, Loop

	var terminals []string
	var exited []string
	err = walk.EnterAndExit(root,
		func(n ast.Node) error {
			if n.Symbol() == ast.SymLoop {
				return walk.ErrSkipChildren
			}
			if n.Symbol().IsTerminal() {
				terminals = append(terminals, n.Symbol().String())
			}
			return nil
		},
		func(n ast.Node) error {
			if n.Symbol() == ast.SymLoop {
				exited = append(exited, fmt.Sprint(n))
			}
			return nil
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Decrement"}, terminals)
	assert.Equal(t, []string{"Loop@1:1"}, exited)
}

func TestDeepTrees(t *testing.T) {
	t.Parallel()

	const n = 50_000
	root := mustParse(t, strings.Repeat("[", n)+"+"+strings.Repeat("]", n))
	var maxDepth int
	err := walk.Nodes(root, func(node ast.Node) error {
		maxDepth = max(maxDepth, node.Depth())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, n, maxDepth)
}

func TestZeroRoot(t *testing.T) {
	t.Parallel()

	called := false
	err := walk.Nodes(ast.Node{}, func(ast.Node) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}
