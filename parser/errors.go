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
	"fmt"
	"strings"

	"github.com/bfcompile/bfcompile/ast"
)

// ErrNoInstructions is returned (wrapped with the file's position) when the
// source contains no tokens at all. An empty program is an error, not a
// program that does nothing.
var ErrNoInstructions = errors.New("no instructions to compile")

// firstOfOp is the FIRST set of the op production, which is also the FIRST
// set of expr and start.
var firstOfOp = []ast.TokenKind{
	ast.MoveLeft, ast.MoveRight, ast.Increment, ast.Decrement,
	ast.Output, ast.Input, ast.JumpForward,
}

// UnexpectedTokenError is a syntax error where the lookahead token is not in
// the FIRST set of the production being parsed.
type UnexpectedTokenError struct {
	Found    ast.Token
	Expected []ast.TokenKind
	// The last consumed token, if there is one.
	After *ast.Token
}

func (e *UnexpectedTokenError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unexpected %q; expected %s", e.Found.Kind.Lexeme(), describeExpected(e.Expected))
	if e.After != nil {
		fmt.Fprintf(&b, " after %q at line %d, column %d", e.After.Kind.Lexeme(), e.After.Pos.Line, e.After.Pos.Col)
	}
	return b.String()
}

// UnexpectedEOFError is a syntax error where the input ended while a
// production still needed a token.
type UnexpectedEOFError struct {
	Expected []ast.TokenKind
	// The last consumed token. Its position is where the error is reported.
	After ast.Token
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("unexpected end of instruction; expected %s after %q",
		describeExpected(e.Expected), e.After.Kind.Lexeme())
}

// UnmatchedBracketError is a syntax error for a "]" with no "[" to close.
type UnmatchedBracketError struct {
	Bracket ast.Token
}

func (e *UnmatchedBracketError) Error() string {
	return fmt.Sprintf("no matching %q before %q", ast.JumpForward.Lexeme(), ast.JumpBackward.Lexeme())
}

// describeExpected renders a FIRST set for a diagnostic, as in
// `either "<", ">" or "["`.
func describeExpected(kinds []ast.TokenKind) string {
	quoted := make([]string, len(kinds))
	for i, k := range kinds {
		quoted[i] = fmt.Sprintf("%q", k.Lexeme())
	}
	switch len(quoted) {
	case 0:
		return "nothing"
	case 1:
		return quoted[0]
	default:
		return "either " + strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	}
}
