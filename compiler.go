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

package bfcompile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/tidwall/btree"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/codegen"
	"github.com/bfcompile/bfcompile/parser"
	"github.com/bfcompile/bfcompile/reporter"
)

// Compiler handles compilation tasks, to turn source files into programs in
// a host language.
//
// The compilation process involves three steps for each source file:
//  1. Lexing the source into tokens.
//  2. Parsing the tokens into a syntax tree.
//  3. Generating code from the tree.
//
// Each file's steps run in order on one goroutine. Separate files are
// compiled concurrently.
type Compiler struct {
	// Resolves file names into source code or intermediate representations.
	// This is how the compiler loads the files to be compiled. This field is
	// the only required field.
	Resolver Resolver
	// The maximum parallelism to use when compiling. If unspecified or set to
	// a non-positive value, then min(runtime.NumCPU(), runtime.GOMAXPROCS(-1))
	// will be used.
	MaxParallelism int
	// A custom error reporter. If unspecified, every error is returned as
	// is, and the first one stops the whole compilation. If the reporter
	// returns nil for an error, the file in question fails but the others
	// still compile, and Compile returns reporter.ErrInvalidSource at the
	// end.
	Reporter reporter.Reporter
	// The shape of the generated code.
	Options codegen.Options
	// If non-nil, called with the contents of every source file read,
	// before it is parsed. It may be called concurrently.
	OnSource func(*ast.FileInfo)
}

// Result is the outcome of compiling one file.
type Result struct {
	// The name the file was compiled as.
	Path string
	// The tokens of the file. Nil if the resolver supplied a tree.
	Tokens []ast.Token
	Tree   *ast.Tree
	Code   *codegen.Code
}

// Compile compiles the given files. The results are in the same order as
// files; a file named more than once is only compiled once.
func (c *Compiler) Compile(ctx context.Context, files ...string) ([]*Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if c.Resolver == nil {
		return nil, errors.New("bfcompile: Compiler.Resolver is required")
	}
	if err := c.Options.Validate(); err != nil {
		return nil, err
	}

	par := c.MaxParallelism
	if par <= 0 {
		par = min(runtime.GOMAXPROCS(-1), runtime.NumCPU())
	}

	g, ctx := errgroup.WithContext(ctx)
	e := &executor{
		c: c,
		s: semaphore.NewWeighted(int64(par)),
	}

	var swallowed atomic.Bool
	out := make([]*Result, len(files))
	for i, f := range files {
		r := e.compile(ctx, f)
		g.Go(func() error {
			select {
			case <-r.ready:
			case <-ctx.Done():
				return ctx.Err()
			}
			if errors.Is(r.err, reporter.ErrInvalidSource) {
				swallowed.Store(true)
				return nil
			}
			if r.err != nil {
				return r.err
			}
			out[i] = r.res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if swallowed.Load() {
		return nil, reporter.ErrInvalidSource
	}
	return out, nil
}

type result struct {
	ready chan struct{}
	res   *Result
	err   error
}

func (r *result) fail(err error) {
	r.err = err
	close(r.ready)
}

func (r *result) complete(res *Result) {
	r.res = res
	close(r.ready)
}

type executor struct {
	c *Compiler
	s *semaphore.Weighted

	mu      sync.Mutex
	results btree.Map[string, *result]
}

func (e *executor) compile(ctx context.Context, file string) *result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if r, ok := e.results.Get(file); ok {
		return r
	}

	r := &result{
		ready: make(chan struct{}),
	}
	e.results.Set(file, r)
	go func() {
		e.doCompile(ctx, file, r)
	}()
	return r
}

func (e *executor) doCompile(ctx context.Context, file string, r *result) {
	if err := e.s.Acquire(ctx, 1); err != nil {
		r.fail(err)
		return
	}
	defer e.s.Release(1)

	sr, err := e.c.Resolver.FindFileByPath(file)
	if err != nil {
		r.fail(err)
		return
	}
	defer func() {
		// If the result included a source, don't leave it open.
		if c, ok := sr.Source.(io.Closer); ok {
			_ = c.Close()
		}
	}()

	t := task{e: e, h: reporter.NewHandler(e.c.Reporter)}
	res, err := t.asResult(ctx, file, sr)
	if err != nil {
		r.fail(err)
		return
	}
	r.complete(res)
}

// A compilation task for one file. Every task has its own error handler, so
// that one file's errors never decide another file's outcome.
type task struct {
	e *executor
	h *reporter.Handler
}

func (t *task) asResult(ctx context.Context, name string, r SearchResult) (*Result, error) {
	res := &Result{Path: name}

	if r.Tree != nil {
		if r.Tree.Filename() != name {
			return nil, fmt.Errorf("search result for %q returned tree for %q", name, r.Tree.Filename())
		}
		if r.Tree.Root().IsZero() {
			return nil, fmt.Errorf("search result for %q returned an unfinished tree", name)
		}
		res.Tree = r.Tree
	} else {
		tokens, err := t.asTokens(name, r)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tree, err := parser.Parse(name, tokens, t.h)
		if err != nil {
			return nil, err
		}
		res.Tokens, res.Tree = tokens, tree
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	code, err := codegen.Generate(res.Tree.Root(), t.e.c.Options)
	if err != nil {
		return nil, err
	}
	res.Code = code
	return res, nil
}

func (t *task) asTokens(name string, r SearchResult) ([]ast.Token, error) {
	if r.Tokens != nil {
		return r.Tokens, nil
	}
	if r.Source == nil {
		return nil, fmt.Errorf("search result for %q has no contents", name)
	}

	data, err := io.ReadAll(r.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	data = parser.StripBOM(data)
	if t.e.c.OnSource != nil {
		t.e.c.OnSource(ast.NewFileInfo(name, data))
	}
	return parser.Lex(name, data), nil
}
