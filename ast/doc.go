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

// Package ast defines the tokens and the syntax tree of the tape language.
//
// The lexer produces a slice of [Token], each carrying its [TokenKind] and a
// 1-based [SourcePos]. The parser consumes that slice and builds a [Tree]
// whose nodes are instances of the grammar's symbols:
//
//	start  := expr
//	expr   := op expr'
//	expr'  := op expr' | ε
//	op     := '<' | '>' | '+' | '-' | '.' | ',' | loop
//	loop   := '[' expr ']'
//
// Nodes are stored in an arena owned by their Tree and are referred to with
// [Node] handles. A Tree is built bottom-up with [Tree.Push], which checks
// every non-terminal's children against its production, and is immutable
// once its root is set.
//
// Every node carries a depth: the number of loops enclosing it. The Start
// node and everything outside of any loop have depth zero.
package ast
