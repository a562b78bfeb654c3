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

import (
	"fmt"
	"iter"

	"github.com/bfcompile/bfcompile/internal/arena"
)

const (
	SymStart    Symbol = iota + 1 // start := expr
	SymExpr                       // expr := op expr'
	SymExprCont                   // expr' := op expr' | ε
	SymOp                         // op := terminal | loop
	SymLoop                       // loop := '[' expr ']'

	SymMoveLeft     // <
	SymMoveRight    // >
	SymIncrement    // +
	SymDecrement    // -
	SymOutput       // .
	SymInput        // ,
	SymJumpForward  // [
	SymJumpBackward // ]
)

// Symbol is a terminal or non-terminal symbol of the grammar.
type Symbol byte

// IsTerminal returns whether this symbol corresponds to a token.
func (s Symbol) IsTerminal() bool {
	return s >= SymMoveLeft && s <= SymJumpBackward
}

// TokenKind returns the kind of token a terminal symbol stands for.
//
// Panics if s is not terminal.
func (s Symbol) TokenKind() TokenKind {
	if !s.IsTerminal() {
		panic(fmt.Sprintf("ast: %v is not a terminal symbol", s))
	}
	return MoveLeft + TokenKind(s-SymMoveLeft)
}

// String implements [fmt.Stringer].
func (s Symbol) String() string {
	switch s {
	case SymStart:
		return "Start"
	case SymExpr:
		return "Expr"
	case SymExprCont:
		return "ExprCont"
	case SymOp:
		return "Op"
	case SymLoop:
		return "Loop"
	default:
		if s.IsTerminal() {
			return s.TokenKind().Name()
		}
		return fmt.Sprintf("ast.Symbol(%d)", int(s))
	}
}

// rawNode is the arena representation of a node.
type rawNode struct {
	sym      Symbol
	depth    uint32
	pos      SourcePos
	children []arena.Pointer[rawNode]
}

// Tree is a syntax tree for one source file.
//
// Nodes are allocated with [Tree.Push], children before parents. Once
// [Tree.SetRoot] is called the tree is frozen and Push panics.
type Tree struct {
	filename string
	nodes    arena.Arena[rawNode]
	root     arena.Pointer[rawNode]
}

// NewTree returns an empty tree for the named file.
func NewTree(filename string) *Tree {
	return &Tree{filename: filename}
}

// Filename returns the name of the file this tree was parsed from.
func (t *Tree) Filename() string {
	return t.filename
}

// Len returns the number of nodes allocated in this tree.
func (t *Tree) Len() int {
	return t.nodes.Len()
}

// Root returns the Start node of this tree, or a zero Node if the tree is
// still being built.
func (t *Tree) Root() Node {
	if t == nil || t.root.Nil() {
		return Node{}
	}
	return Node{tree: t, ptr: t.root}
}

// SetRoot freezes the tree with n as its root. n must be a Start node
// allocated in t.
func (t *Tree) SetRoot(n Node) {
	if !t.root.Nil() {
		panic("ast: tree root set twice")
	}
	if n.tree != t {
		panic("ast: root belongs to a different tree")
	}
	if n.Symbol() != SymStart {
		panic(fmt.Sprintf("ast: root must be %v, got %v", SymStart, n.Symbol()))
	}
	t.root = n.ptr
}

// Push allocates a new node with the given children and returns it.
//
// Panics if the children do not match sym's production, if their depths are
// inconsistent with depth, or if the tree is frozen; each of those is a bug in
// the caller rather than a problem with the input.
func (t *Tree) Push(sym Symbol, depth int, pos SourcePos, children ...Node) Node {
	if !t.root.Nil() {
		panic("ast: push onto frozen tree")
	}
	if depth < 0 {
		panic(fmt.Sprintf("ast: negative depth %d", depth))
	}
	if err := checkProduction(sym, depth, children); err != nil {
		panic(fmt.Sprintf("ast: malformed %v node: %v", sym, err))
	}

	raw := rawNode{sym: sym, depth: uint32(depth), pos: pos}
	if len(children) > 0 {
		raw.children = make([]arena.Pointer[rawNode], len(children))
		for i, child := range children {
			if child.tree != t {
				panic("ast: child belongs to a different tree")
			}
			raw.children[i] = child.ptr
		}
	}
	return Node{tree: t, ptr: t.nodes.New(raw)}
}

// checkProduction verifies that children are exactly what the grammar
// permits under sym.
func checkProduction(sym Symbol, depth int, children []Node) error {
	want := func(i int, syms ...Symbol) error {
		got := children[i].Symbol()
		for _, s := range syms {
			if got == s {
				return nil
			}
		}
		return fmt.Errorf("child %d is %v, want one of %v", i, got, syms)
	}
	arity := func(lo, hi int) error {
		if len(children) < lo || len(children) > hi {
			return fmt.Errorf("%d children, want %d to %d", len(children), lo, hi)
		}
		return nil
	}
	sameDepth := func() error {
		for i, child := range children {
			if child.Depth() != depth {
				return fmt.Errorf("child %d has depth %d, want %d", i, child.Depth(), depth)
			}
		}
		return nil
	}

	switch sym {
	case SymStart:
		if err := arity(1, 1); err != nil {
			return err
		}
		if err := want(0, SymExpr); err != nil {
			return err
		}
		return sameDepth()

	case SymExpr, SymExprCont:
		if err := arity(1, 2); err != nil {
			return err
		}
		if err := want(0, SymOp); err != nil {
			return err
		}
		if len(children) == 2 {
			if err := want(1, SymExprCont); err != nil {
				return err
			}
		}
		return sameDepth()

	case SymOp:
		if err := arity(1, 1); err != nil {
			return err
		}
		if err := want(0, SymMoveLeft, SymMoveRight, SymIncrement, SymDecrement,
			SymOutput, SymInput, SymLoop); err != nil {
			return err
		}
		return sameDepth()

	case SymLoop:
		if err := arity(3, 3); err != nil {
			return err
		}
		for i, s := range []Symbol{SymJumpForward, SymExpr, SymJumpBackward} {
			if err := want(i, s); err != nil {
				return err
			}
		}
		if children[0].Depth() != depth || children[2].Depth() != depth {
			return fmt.Errorf("brackets must have depth %d", depth)
		}
		if children[1].Depth() != depth+1 {
			return fmt.Errorf("loop body has depth %d, want %d", children[1].Depth(), depth+1)
		}
		return nil

	default:
		if !sym.IsTerminal() {
			return fmt.Errorf("unknown symbol %v", sym)
		}
		return arity(0, 0)
	}
}

// Node is a handle to a node in a [Tree].
//
// The zero value is a "nil" node; its accessors return zero values.
type Node struct {
	tree *Tree
	ptr  arena.Pointer[rawNode]
}

// IsZero returns whether this is the zero Node.
func (n Node) IsZero() bool {
	return n.tree == nil || n.ptr.Nil()
}

// Tree returns the tree this node belongs to.
func (n Node) Tree() *Tree {
	return n.tree
}

func (n Node) raw() *rawNode {
	return n.tree.nodes.Deref(n.ptr)
}

// Symbol returns the grammar symbol this node is an instance of.
func (n Node) Symbol() Symbol {
	if n.IsZero() {
		return 0
	}
	return n.raw().sym
}

// Depth returns the number of loops enclosing this node.
func (n Node) Depth() int {
	if n.IsZero() {
		return 0
	}
	return int(n.raw().depth)
}

// Pos returns the position of the first token covered by this node.
func (n Node) Pos() SourcePos {
	if n.IsZero() {
		return SourcePos{}
	}
	return n.raw().pos
}

// NumChildren returns the number of children this node has.
func (n Node) NumChildren() int {
	if n.IsZero() {
		return 0
	}
	return len(n.raw().children)
}

// Child returns the i-th child of this node.
//
// Panics if i is out of range.
func (n Node) Child(i int) Node {
	return Node{tree: n.tree, ptr: n.raw().children[i]}
}

// Children returns an iterator over this node's children, in order.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := range n.NumChildren() {
			if !yield(n.Child(i)) {
				return
			}
		}
	}
}

// String implements [fmt.Stringer].
func (n Node) String() string {
	if n.IsZero() {
		return "<nil>"
	}
	return fmt.Sprintf("%v@%d:%d", n.Symbol(), n.Pos().Line, n.Pos().Col)
}
