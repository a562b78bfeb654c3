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
	"io"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/reporter"
)

// ParseFile tokenizes the contents of r and parses the result.
func ParseFile(filename string, r io.Reader, handler *reporter.Handler) (*ast.Tree, error) {
	tokens, err := Tokenize(filename, r)
	if err != nil {
		return nil, err
	}
	return Parse(filename, tokens, handler)
}

// Parse builds a syntax tree from tokens:
//
//	start  := expr
//	expr   := op expr'
//	expr'  := op expr' | ε
//	op     := '<' | '>' | '+' | '-' | '.' | ',' | loop
//	loop   := '[' expr ']'
//
// The first syntax error is reported to handler and parsing stops. The
// returned error is whatever handler's Reporter returned for it, or
// reporter.ErrInvalidSource if the Reporter returned nil. An empty token
// sequence fails with ErrNoInstructions. A nil handler returns errors
// unchanged.
func Parse(filename string, tokens []ast.Token, handler *reporter.Handler) (*ast.Tree, error) {
	if handler == nil {
		handler = reporter.NewHandler(nil)
	}
	p := &parser{
		tokens:  tokens,
		prev:    -1,
		tree:    ast.NewTree(filename),
		handler: handler,
	}
	if len(tokens) == 0 {
		return nil, p.fail(ast.UnknownPos(filename), ErrNoInstructions)
	}

	root, err := p.parseStart()
	if err != nil {
		return nil, err
	}
	p.tree.SetRoot(root)
	return p.tree, nil
}

// parser is the state shared by the production methods: the token sequence,
// the index of the lookahead token and of the last consumed token.
type parser struct {
	tokens    []ast.Token
	cur, prev int
	tree      *ast.Tree
	handler   *reporter.Handler
}

// peek returns the lookahead token, or false at the end of input.
func (p *parser) peek() (ast.Token, bool) {
	if p.cur >= len(p.tokens) {
		return ast.Token{}, false
	}
	return p.tokens[p.cur], true
}

// next consumes the lookahead token.
func (p *parser) next() ast.Token {
	tok := p.tokens[p.cur]
	p.prev = p.cur
	p.cur++
	return tok
}

// previous returns the last consumed token, or nil if none has been
// consumed yet.
func (p *parser) previous() *ast.Token {
	if p.prev < 0 {
		return nil
	}
	tok := p.tokens[p.prev]
	return &tok
}

// fail reports err at pos and returns the error parsing should stop with.
func (p *parser) fail(pos ast.SourcePos, err error) error {
	if reported := p.handler.HandleError(reporter.Error(pos, err)); reported != nil {
		return reported
	}
	return reporter.ErrInvalidSource
}

// failEOF reports that input ended where one of expected was needed. The
// error is attributed to the last consumed token.
func (p *parser) failEOF(expected ...ast.TokenKind) error {
	after := p.previous()
	if after == nil {
		// Only reachable with an empty token sequence, which Parse rejects.
		return p.fail(ast.UnknownPos(p.tree.Filename()), ErrNoInstructions)
	}
	return p.fail(after.Pos, &UnexpectedEOFError{Expected: expected, After: *after})
}

// start := expr
func (p *parser) parseStart() (ast.Node, error) {
	expr, err := p.parseExpr(0)
	if err != nil {
		return ast.Node{}, err
	}

	// expr' only gives up control at a "]" or at the end of input. At the top
	// level, a "]" has nothing to close.
	if tok, ok := p.peek(); ok {
		return ast.Node{}, p.fail(tok.Pos, &UnmatchedBracketError{Bracket: tok})
	}
	return p.tree.Push(ast.SymStart, 0, expr.Pos(), expr), nil
}

// expr := op expr'
func (p *parser) parseExpr(depth int) (ast.Node, error) {
	if _, ok := p.peek(); !ok {
		return ast.Node{}, p.failEOF(firstOfOp...)
	}

	op, err := p.parseOp(depth)
	if err != nil {
		return ast.Node{}, err
	}
	tail, err := p.parseExprCont(depth)
	if err != nil {
		return ast.Node{}, err
	}

	if tail.IsZero() {
		return p.tree.Push(ast.SymExpr, depth, op.Pos(), op), nil
	}
	return p.tree.Push(ast.SymExpr, depth, op.Pos(), op, tail), nil
}

// expr' := op expr' | ε
//
// The ops are parsed in a loop and then nested right to left, so a long run
// of instructions does not cost one stack frame each. An empty expr' yields
// the zero Node, which callers omit from the tree.
func (p *parser) parseExprCont(depth int) (ast.Node, error) {
	var ops []ast.Node
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == ast.JumpBackward {
			break
		}
		op, err := p.parseOp(depth)
		if err != nil {
			return ast.Node{}, err
		}
		ops = append(ops, op)
	}

	var tail ast.Node
	for i := len(ops) - 1; i >= 0; i-- {
		if tail.IsZero() {
			tail = p.tree.Push(ast.SymExprCont, depth, ops[i].Pos(), ops[i])
		} else {
			tail = p.tree.Push(ast.SymExprCont, depth, ops[i].Pos(), ops[i], tail)
		}
	}
	return tail, nil
}

// op := '<' | '>' | '+' | '-' | '.' | ',' | loop
func (p *parser) parseOp(depth int) (ast.Node, error) {
	tok, ok := p.peek()
	if !ok {
		return ast.Node{}, p.failEOF(firstOfOp...)
	}

	switch tok.Kind {
	case ast.JumpForward:
		loop, err := p.parseLoop(depth)
		if err != nil {
			return ast.Node{}, err
		}
		return p.tree.Push(ast.SymOp, depth, loop.Pos(), loop), nil

	case ast.JumpBackward:
		if depth == 0 {
			return ast.Node{}, p.fail(tok.Pos, &UnmatchedBracketError{Bracket: tok})
		}
		// An empty loop body, as in "[]".
		return ast.Node{}, p.fail(tok.Pos, &UnexpectedTokenError{
			Found:    tok,
			Expected: firstOfOp,
			After:    p.previous(),
		})

	case ast.MoveLeft, ast.MoveRight, ast.Increment, ast.Decrement, ast.Output, ast.Input:
		p.next()
		term := p.tree.Push(tok.Kind.Symbol(), depth, tok.Pos)
		return p.tree.Push(ast.SymOp, depth, tok.Pos, term), nil

	default:
		return ast.Node{}, p.fail(tok.Pos, &UnexpectedTokenError{
			Found:    tok,
			Expected: firstOfOp,
			After:    p.previous(),
		})
	}
}

// loop := '[' expr ']'
func (p *parser) parseLoop(depth int) (ast.Node, error) {
	open, ok := p.peek()
	if !ok {
		return ast.Node{}, p.failEOF(ast.JumpForward)
	}
	if open.Kind != ast.JumpForward {
		return ast.Node{}, p.fail(open.Pos, &UnexpectedTokenError{
			Found:    open,
			Expected: []ast.TokenKind{ast.JumpForward},
			After:    p.previous(),
		})
	}
	p.next()
	openNode := p.tree.Push(ast.SymJumpForward, depth, open.Pos)

	body, err := p.parseExpr(depth + 1)
	if err != nil {
		return ast.Node{}, err
	}

	closing, ok := p.peek()
	if !ok {
		return ast.Node{}, p.failEOF(ast.JumpBackward)
	}
	if closing.Kind != ast.JumpBackward {
		return ast.Node{}, p.fail(closing.Pos, &UnexpectedTokenError{
			Found:    closing,
			Expected: []ast.TokenKind{ast.JumpBackward},
			After:    p.previous(),
		})
	}
	p.next()
	closeNode := p.tree.Push(ast.SymJumpBackward, depth, closing.Pos)

	return p.tree.Push(ast.SymLoop, depth, open.Pos, openNode, body, closeNode), nil
}
