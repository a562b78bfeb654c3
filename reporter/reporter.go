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

// Package reporter contains the types used for reporting errors from the
// parser and the compiler.
//
// Every error is fatal to the file it occurs in: the parser stops at the
// first one. A Reporter only gets to observe errors (for logging, collecting
// or rendering) and to decide which error value is returned to the caller.
package reporter

import (
	"errors"
	"sync"

	"github.com/bfcompile/bfcompile/ast"
)

// ErrorReporter is responsible for reporting the given error. Whatever it
// returns is what the failing operation returns; if it returns nil, the
// operation returns ErrInvalidSource instead.
type ErrorReporter func(err ErrorWithPos) error

// Reporter receives the errors found while compiling.
type Reporter interface {
	Error(ErrorWithPos) error
}

// NewReporter returns a Reporter that calls errs. A nil errs returns every
// error unchanged.
func NewReporter(errs ErrorReporter) Reporter {
	return reporterFunc(errs)
}

type reporterFunc ErrorReporter

func (r reporterFunc) Error(err ErrorWithPos) error {
	if r == nil {
		return err
	}
	return r(err)
}

// Collector is a Reporter that remembers every error it is given and
// returns it unchanged. It is safe for concurrent use.
type Collector struct {
	mu   sync.Mutex
	errs []ErrorWithPos
}

// Error implements [Reporter].
func (c *Collector) Error(err ErrorWithPos) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
	return err
}

// Errors returns the errors collected so far, in the order reported.
func (c *Collector) Errors() []ErrorWithPos {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ErrorWithPos(nil), c.errs...)
}

// Handler funnels errors into a Reporter and remembers the outcome. A
// Handler is shared by everything compiled in one operation; once the
// Reporter has returned an error, later calls return that same error.
type Handler struct {
	reporter Reporter

	mu           sync.Mutex
	errsReported bool
	err          error
}

// NewHandler creates a new Handler that reports errors to rep. A nil rep
// returns every error unchanged.
func NewHandler(rep Reporter) *Handler {
	if rep == nil {
		rep = NewReporter(nil)
	}
	return &Handler{reporter: rep}
}

// HandleErrorf reports an error at pos, built as if by fmt.Errorf.
func (h *Handler) HandleErrorf(pos ast.SourcePos, format string, args ...any) error {
	return h.HandleError(Errorf(pos, format, args...))
}

// HandleError reports err. Errors that carry no position are recorded as the
// handler's result without passing through the Reporter.
func (h *Handler) HandleError(err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return h.err
	}
	var ewp ErrorWithPos
	if errors.As(err, &ewp) {
		h.errsReported = true
		err = h.reporter.Error(ewp)
	}
	h.err = err
	return err
}

// Error returns the handler's result: the error returned by the Reporter,
// ErrInvalidSource if errors were reported but the Reporter swallowed them,
// or nil if nothing was reported.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.errsReported && h.err == nil {
		return ErrInvalidSource
	}
	return h.err
}

// ReporterError returns the error the Reporter returned, if any. Unlike
// Error, it does not substitute ErrInvalidSource.
func (h *Handler) ReporterError() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}
