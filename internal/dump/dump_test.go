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

package dump

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/parser"
)

func parse(t *testing.T, src string) ([]ast.Token, ast.Node) {
	t.Helper()
	tokens := parser.Lex("test.bf", []byte(src))
	tree, err := parser.Parse("test.bf", tokens, nil)
	require.NoError(t, err)
	return tokens, tree.Root()
}

func TestTokensText(t *testing.T) {
	t.Parallel()

	tokens, _ := parse(t, "+\n [.]")
	var out strings.Builder
	require.NoError(t, Tokens(&out, tokens, Text))
	assert.Equal(t, "1:1\tIncrement\t+\n"+
		"2:2\tJumpForward\t[\n"+
		"2:3\tOutput\t.\n"+
		"2:4\tJumpBackward\t]\n", out.String())
}

func TestTokensYAML(t *testing.T) {
	t.Parallel()

	tokens, _ := parse(t, "+,")
	var out strings.Builder
	require.NoError(t, Tokens(&out, tokens, YAML))
	assert.Equal(t, `- kind: Increment
  lexeme: +
  line: 1
  col: 1
- kind: Input
  lexeme: ','
  line: 1
  col: 2
`, out.String())
}

func TestTreeText(t *testing.T) {
	t.Parallel()

	_, root := parse(t, "+[-]")
	var out strings.Builder
	require.NoError(t, Tree(&out, root, Text))
	assert.Equal(t, `Start 1:1
  Expr 1:1
    Op 1:1
      Increment "+" 1:1
    Op 1:2
      Loop 1:2
        JumpForward "[" 1:2
        Expr 1:3
          Op 1:3
            Decrement "-" 1:3
        JumpBackward "]" 1:4
`, out.String())
}

func TestTreeYAML(t *testing.T) {
	t.Parallel()

	_, root := parse(t, "[>]")
	var out strings.Builder
	require.NoError(t, Tree(&out, root, YAML))

	var got node
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got))
	loop := got.Children[0].Ops[0].Children[0]
	assert.Equal(t, "Loop", loop.Symbol)
	assert.Equal(t, 0, loop.Depth)
	require.Len(t, loop.Children, 3)
	body := loop.Children[1]
	assert.Equal(t, 1, body.Depth)
	assert.Equal(t, ">", body.Ops[0].Children[0].Lexeme)
}

func TestTreeJSON(t *testing.T) {
	t.Parallel()

	_, root := parse(t, ".")
	var out strings.Builder
	require.NoError(t, Tree(&out, root, JSON))

	var got structpb.Value
	require.NoError(t, protojson.Unmarshal([]byte(out.String()), &got))
	want, err := structpb.NewValue(map[string]any{
		"symbol": "Start", "depth": 0, "line": 1, "col": 1,
		"children": []any{map[string]any{
			"symbol": "Expr", "depth": 0, "line": 1, "col": 1,
			"ops": []any{map[string]any{
				"symbol": "Op", "depth": 0, "line": 1, "col": 1,
				"children": []any{map[string]any{
					"symbol": "Output", "lexeme": ".", "depth": 0, "line": 1, "col": 1,
				}},
			}},
		}},
	})
	require.NoError(t, err)
	if diff := cmp.Diff(want, &got, protocmp.Transform()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeFlattensChains(t *testing.T) {
	t.Parallel()

	_, root := parse(t, "+-<")
	var out strings.Builder
	require.NoError(t, Tree(&out, root, YAML))
	assert.NotContains(t, out.String(), "ExprCont")

	var got node
	require.NoError(t, yaml.Unmarshal([]byte(out.String()), &got))
	expr := got.Children[0]
	require.Len(t, expr.Ops, 3)
	for i, want := range []string{"+", "-", "<"} {
		assert.Equal(t, want, expr.Ops[i].Children[0].Lexeme)
		assert.Equal(t, i+1, expr.Ops[i].Col)
	}
}

func TestTreeLongProgram(t *testing.T) {
	t.Parallel()

	const n = 50_000
	_, root := parse(t, strings.Repeat("+", n))
	for _, format := range []Format{Text, YAML, JSON} {
		t.Run(format.String(), func(t *testing.T) {
			t.Parallel()
			var out strings.Builder
			require.NoError(t, Tree(&out, root, format))
			// Every op costs a bounded number of bytes, whatever its position.
			assert.Less(t, out.Len(), n*1000)
			assert.Equal(t, n, strings.Count(out.String(), "Increment"))
		})
	}
}

func TestTokensJSON(t *testing.T) {
	t.Parallel()

	tokens, _ := parse(t, "<>")
	var out strings.Builder
	require.NoError(t, Tokens(&out, tokens, JSON))

	var got structpb.Value
	require.NoError(t, protojson.Unmarshal([]byte(out.String()), &got))
	list := got.GetListValue().GetValues()
	require.Len(t, list, 2)
	assert.Equal(t, "MoveRight", list[1].GetStructValue().GetFields()["kind"].GetStringValue())
	assert.InDelta(t, 2, list[1].GetStructValue().GetFields()["col"].GetNumberValue(), 0)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{Text, YAML, JSON} {
		got, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)

	tokens, root := parse(t, "+")
	assert.Error(t, Tokens(&strings.Builder{}, tokens, Format(9)))
	assert.Error(t, Tree(&strings.Builder{}, root, Format(9)))
	assert.Error(t, Tree(&strings.Builder{}, ast.Node{}, YAML))
}
