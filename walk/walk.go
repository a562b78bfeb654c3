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

// Package walk provides helper functions for traversing syntax trees.
//
// Traversal is pre-order and uses an explicit stack, so it handles trees of
// any depth; a program's ExprCont chain is as long as the program.
package walk

import (
	"errors"

	"github.com/bfcompile/bfcompile/ast"
)

// ErrSkipChildren may be returned by an enter function to skip the node's
// children. The node's exit function is still called.
var ErrSkipChildren = errors.New("walk: skip children")

// Nodes calls fn for every node under root (including root), in pre-order.
// If fn returns an error, the walk stops and that error is returned.
func Nodes(root ast.Node, fn func(ast.Node) error) error {
	return EnterAndExit(root, fn, nil)
}

// EnterAndExit walks the tree under root in pre-order. It calls enter before
// visiting a node's children and exit after them. Either function may be
// nil. If either returns an error other than ErrSkipChildren, the walk stops
// and that error is returned.
func EnterAndExit(root ast.Node, enter, exit func(ast.Node) error) error {
	if root.IsZero() {
		return nil
	}

	type frame struct {
		node ast.Node
		next int // index of the next child to visit
	}
	stack := []frame{{node: root, next: -1}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < 0 {
			top.next = 0
			if enter != nil {
				err := enter(top.node)
				if errors.Is(err, ErrSkipChildren) {
					top.next = top.node.NumChildren()
				} else if err != nil {
					return err
				}
			}
		}
		if top.next < top.node.NumChildren() {
			child := top.node.Child(top.next)
			top.next++
			stack = append(stack, frame{node: child, next: -1})
			continue
		}

		node := top.node
		stack = stack[:len(stack)-1]
		if exit != nil {
			if err := exit(node); err != nil {
				return err
			}
		}
	}
	return nil
}

// Terminals calls fn for every terminal under root, in program order.
func Terminals(root ast.Node, fn func(ast.Node) error) error {
	return Nodes(root, func(n ast.Node) error {
		if !n.Symbol().IsTerminal() {
			return nil
		}
		return fn(n)
	})
}
