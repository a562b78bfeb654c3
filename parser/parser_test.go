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

package parser

import (
	"errors"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/reporter"
)

func parseForTest(src string) (*ast.Tree, error) {
	return Parse("test.bf", Lex("test.bf", []byte(src)), reporter.NewHandler(nil))
}

// shape renders a subtree as nested symbol names.
func shape(n ast.Node) string {
	if n.NumChildren() == 0 {
		return n.Symbol().String()
	}
	var b strings.Builder
	b.WriteString(n.Symbol().String())
	b.WriteByte('(')
	for i := range n.NumChildren() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(shape(n.Child(i)))
	}
	b.WriteByte(')')
	return b.String()
}

func TestParseShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src, want string
	}{
		{
			src:  "+",
			want: "Start(Expr(Op(Increment)))",
		},
		{
			src:  "++.",
			want: "Start(Expr(Op(Increment) ExprCont(Op(Increment) ExprCont(Op(Output)))))",
		},
		{
			src:  "[-]",
			want: "Start(Expr(Op(Loop(JumpForward Expr(Op(Decrement)) JumpBackward))))",
		},
		{
			src:  ",[.,]<>",
			want: "Start(Expr(Op(Input) ExprCont(Op(Loop(JumpForward Expr(Op(Output) ExprCont(Op(Input))) JumpBackward)) ExprCont(Op(MoveLeft) ExprCont(Op(MoveRight))))))",
		},
		{
			src:  "[[>]]",
			want: "Start(Expr(Op(Loop(JumpForward Expr(Op(Loop(JumpForward Expr(Op(MoveRight)) JumpBackward))) JumpBackward))))",
		},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			t.Parallel()
			tree, err := parseForTest(test.src)
			require.NoError(t, err)
			assert.Equal(t, test.want, shape(tree.Root()))
		})
	}
}

func TestParseIgnoresComments(t *testing.T) {
	t.Parallel()

	withComments, err := parseForTest("add two: +a+\n")
	require.NoError(t, err)
	plain, err := parseForTest("++")
	require.NoError(t, err)
	assert.Equal(t, shape(plain.Root()), shape(withComments.Root()))
}

func TestParsePositions(t *testing.T) {
	t.Parallel()

	tree, err := parseForTest("x\n [+]")
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, ast.SourcePos{Filename: "test.bf", Line: 2, Col: 2, Offset: 3}, root.Pos())
	loop := root.Child(0).Child(0).Child(0)
	require.Equal(t, ast.SymLoop, loop.Symbol())
	assert.Equal(t, 2, loop.Pos().Col)
	assert.Equal(t, 3, loop.Child(1).Pos().Col)
	assert.Equal(t, 4, loop.Child(2).Pos().Col)
}

type errorCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Error  string `yaml:"error"`
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/errors.yaml")
	require.NoError(t, err)
	var cases []errorCase
	require.NoError(t, yaml.Unmarshal(data, &cases))
	require.NotEmpty(t, cases)

	for _, test := range cases {
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()
			tree, err := parseForTest(test.Source)
			assert.Nil(t, tree)
			require.Error(t, err)
			assert.Equal(t, test.Error, err.Error())

			var ewp reporter.ErrorWithPos
			assert.True(t, errors.As(err, &ewp))
		})
	}
}

func TestParseErrorTypes(t *testing.T) {
	t.Parallel()

	_, err := parseForTest("")
	assert.ErrorIs(t, err, ErrNoInstructions)

	_, err = parseForTest("[+")
	var eof *UnexpectedEOFError
	require.ErrorAs(t, err, &eof)
	assert.Equal(t, []ast.TokenKind{ast.JumpBackward}, eof.Expected)
	assert.Equal(t, ast.Increment, eof.After.Kind)

	_, err = parseForTest("]")
	var unmatched *UnmatchedBracketError
	require.ErrorAs(t, err, &unmatched)
	assert.Equal(t, 1, unmatched.Bracket.Pos.Line)
	assert.Equal(t, 1, unmatched.Bracket.Pos.Col)

	_, err = parseForTest("[]")
	var unexpected *UnexpectedTokenError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, ast.JumpBackward, unexpected.Found.Kind)
	require.NotNil(t, unexpected.After)
	assert.Equal(t, ast.JumpForward, unexpected.After.Kind)
}

func TestParseReporter(t *testing.T) {
	t.Parallel()

	collector := new(reporter.Collector)
	_, err := Parse("test.bf", Lex("test.bf", []byte("+]")), reporter.NewHandler(collector))
	require.Error(t, err)
	errs := collector.Errors()
	require.Len(t, errs, 1, "parsing stops at the first error")
	assert.Equal(t, 2, errs[0].GetPosition().Col)

	// A reporter that swallows errors still fails the parse.
	quiet := reporter.NewHandler(reporter.NewReporter(func(reporter.ErrorWithPos) error { return nil }))
	_, err = Parse("test.bf", Lex("test.bf", []byte("[")), quiet)
	assert.ErrorIs(t, err, reporter.ErrInvalidSource)

	// So does a nil handler.
	_, err = Parse("test.bf", nil, nil)
	assert.ErrorIs(t, err, ErrNoInstructions)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	tree, err := ParseFile("file.bf", strings.NewReader("++[>+<-]"), nil)
	require.NoError(t, err)
	assert.Equal(t, "file.bf", tree.Filename())

	_, err = ParseFile("file.bf", failingReader{}, nil)
	assert.EqualError(t, err, "device not ready")
}

func TestParseLongProgram(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("+>", 100_000)
	tree, err := parseForTest(src)
	require.NoError(t, err)

	// Walk the ExprCont chain without recursion.
	count := 0
	for n := tree.Root().Child(0); ; {
		count++
		if n.NumChildren() < 2 {
			break
		}
		n = n.Child(1)
	}
	assert.Equal(t, 200_000, count)
}

// checkDepths verifies that every terminal's depth is the number of loops
// open at its position. A bracket has the depth of the loop it belongs to.
func checkDepths(t *testing.T, tokens []ast.Token, root ast.Node) {
	t.Helper()

	open := make(map[int]int, len(tokens)) // offset -> open loops before it
	depth := 0
	for _, tok := range tokens {
		if tok.Kind == ast.JumpBackward {
			depth--
		}
		open[tok.Pos.Offset] = depth
		if tok.Kind == ast.JumpForward {
			depth++
		}
	}

	assert.Equal(t, 0, root.Depth())
	var visit func(n ast.Node)
	visit = func(n ast.Node) {
		if n.Symbol().IsTerminal() {
			want, ok := open[n.Pos().Offset]
			if assert.True(t, ok, "no token at %v", n.Pos()) {
				assert.Equal(t, want, n.Depth(), "%v", n)
			}
		}
		for child := range n.Children() {
			visit(child)
		}
	}
	visit(root)
}

// TestBracketBalance checks, over random programs, that parsing succeeds
// exactly when brackets are balanced, properly nested and no loop is empty,
// and that every node's depth is its loop nesting level.
func TestBracketBalance(t *testing.T) {
	t.Parallel()

	const alphabet = "+-<>.,[[]]"
	rng := rand.New(rand.NewPCG(3, 4))

	var accepted, rejected int
	for range 2000 {
		var b strings.Builder
		for range 1 + rng.IntN(12) {
			b.WriteByte(alphabet[rng.IntN(len(alphabet))])
		}
		src := b.String()

		tokens := Lex("test.bf", []byte(src))
		tree, err := Parse("test.bf", tokens, nil)
		if wellFormed(src) {
			accepted++
			if assert.NoError(t, err, "%q", src) {
				checkDepths(t, tokens, tree.Root())
			}
		} else {
			rejected++
			assert.Error(t, err, "%q", src)
		}
	}
	assert.NotZero(t, accepted)
	assert.NotZero(t, rejected)
}

func wellFormed(src string) bool {
	depth := 0
	for i, c := range src {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 || src[i-1] == '[' {
				return false
			}
		}
	}
	return depth == 0 && src != ""
}

func FuzzParse(f *testing.F) {
	for _, seed := range []string{"", "+", "[-]", "[+", "]", "[]", "++[>++<-]>.", "a\nb[c]d"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		tokens := Lex("fuzz.bf", []byte(src))
		tree, err := Parse("fuzz.bf", tokens, nil)

		var lexemes strings.Builder
		for _, tok := range tokens {
			lexemes.WriteString(tok.Kind.Lexeme())
		}
		if wellFormed(lexemes.String()) {
			if err != nil {
				t.Fatalf("%q: unexpected error: %v", src, err)
			}
			if tree.Root().Symbol() != ast.SymStart {
				t.Fatalf("%q: root is %v", src, tree.Root().Symbol())
			}
		} else if err == nil {
			t.Fatalf("%q: expected an error", src)
		}
	})
}
