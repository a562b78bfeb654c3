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

package ast

import "fmt"

const (
	MoveLeft     TokenKind = iota + 1 // <
	MoveRight                         // >
	Increment                         // +
	Decrement                         // -
	Output                            // .
	Input                             // ,
	JumpForward                       // [
	JumpBackward                      // ]
)

// TokenKind identifies what kind of lexeme a [Token] is. The kind fully
// determines a token's meaning; tokens carry no other payload.
//
// The zero value is not a valid kind.
type TokenKind byte

// TokenKindOf returns the kind of token the given character lexes to, if
// any.
func TokenKindOf(r rune) (TokenKind, bool) {
	switch r {
	case '<':
		return MoveLeft, true
	case '>':
		return MoveRight, true
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return JumpForward, true
	case ']':
		return JumpBackward, true
	default:
		return 0, false
	}
}

// Lexeme returns the character this kind of token is spelled with.
func (k TokenKind) Lexeme() string {
	switch k {
	case MoveLeft:
		return "<"
	case MoveRight:
		return ">"
	case Increment:
		return "+"
	case Decrement:
		return "-"
	case Output:
		return "."
	case Input:
		return ","
	case JumpForward:
		return "["
	case JumpBackward:
		return "]"
	default:
		return fmt.Sprintf("ast.TokenKind(%d)", int(k))
	}
}

// Name returns the descriptive name of this kind, e.g. "MoveLeft".
func (k TokenKind) Name() string {
	switch k {
	case MoveLeft:
		return "MoveLeft"
	case MoveRight:
		return "MoveRight"
	case Increment:
		return "Increment"
	case Decrement:
		return "Decrement"
	case Output:
		return "Output"
	case Input:
		return "Input"
	case JumpForward:
		return "JumpForward"
	case JumpBackward:
		return "JumpBackward"
	default:
		return fmt.Sprintf("ast.TokenKind(%d)", int(k))
	}
}

// String implements [fmt.Stringer]. It returns the lexeme, since that is
// what diagnostics show to users.
func (k TokenKind) String() string {
	return k.Lexeme()
}

// Symbol returns the terminal symbol a token of this kind becomes in a
// syntax tree.
func (k TokenKind) Symbol() Symbol {
	if k < MoveLeft || k > JumpBackward {
		panic(fmt.Sprintf("ast: no symbol for %v", k))
	}
	return SymMoveLeft + Symbol(k-MoveLeft)
}

// Token is a single recognized lexeme and the position it was found at.
type Token struct {
	Kind TokenKind
	Pos  SourcePos
}

func (t Token) String() string {
	return fmt.Sprintf("%q at %s", t.Kind.Lexeme(), t.Pos)
}
