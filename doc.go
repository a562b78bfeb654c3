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

// Package bfcompile provides the entry point for a compiler that translates
// programs written in the eight-instruction tape language (< > + - . , [ ])
// into C or Go source code.
//
// The compilation process involves three phases for each source file:
//  1. Lex the source into tokens.
//     Also see: parser.Lex
//  2. Parse the tokens into a syntax tree.
//     Also see: parser.Parse
//  3. Generate code by walking the tree.
//     Also see: codegen.Generate
//
// This package provides an easy-to-use interface that does all of the phases
// relevant, based on the inputs given. It is also capable of taking advantage
// of multiple CPU cores by compiling several files in parallel.
//
// # Resolvers
//
// A Resolver is how the compiler locates the files to compile. A Resolver
// can provide any of the following in response to a query for a file.
//   - Source code: the compiler lexes, parses and generates code for it.
//   - Tokens: the lexing step is skipped.
//   - Syntax tree: only code generation is left to do.
//
// # Compiler
//
// A Compiler accepts a list of file names and produces a list of results.
// Only the Resolver field is required. A minimal Compiler, that reads files
// from the file system relative to the current working directory and
// generates C, can be had with the following simple snippet:
//
//	compiler := bfcompile.Compiler{
//		Resolver: &bfcompile.SourceResolver{},
//	}
//
// This minimal Compiler will use default parallelism, equal to the number of
// CPU cores detected, and it will fail fast at the first error. Both can be
// customized by setting other fields.
package bfcompile
