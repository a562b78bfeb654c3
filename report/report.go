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

// Package report renders compiler errors for people: either one line per
// error, as the Go compiler does, or with the offending source line and a
// caret under the token, as the Rust compiler does.
package report

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/parser"
	"github.com/bfcompile/bfcompile/reporter"
)

const (
	Error Level = 1 + iota
	note        // Used internally within the diagnostic renderer.
)

const (
	Simple Style = 1 + iota
	Monochrome
	Colored
)

// Level represents the severity of a diagnostic message.
type Level int8

// Style indicates how a diagnostic should be rendered to show a user.
type Style int

// ParseStyle converts the name of a style, as printed by [Style.String],
// back into a Style.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "simple":
		return Simple, nil
	case "monochrome":
		return Monochrome, nil
	case "colored", "color":
		return Colored, nil
	default:
		return 0, fmt.Errorf("unknown diagnostic style %q", s)
	}
}

// String implements [fmt.Stringer].
func (s Style) String() string {
	switch s {
	case Simple:
		return "simple"
	case Monochrome:
		return "monochrome"
	case Colored:
		return "colored"
	default:
		return fmt.Sprintf("report.Style(%d)", int(s))
	}
}

// Diagnostic is an error that can be rendered with its source context.
type Diagnostic struct {
	// The error that prompted this diagnostic. Its Error() return is used
	// as the diagnostic message.
	Err error

	Level Level

	mention     string
	snippet     *snippet
	notes, help []string

	// Stack trace information for the diagnostic, for use in debugging
	// the compiler. Only populated when the env var BFC_DEBUG is set.
	trace []runtime.Frame
}

type snippet struct {
	file    *ast.FileInfo
	pos     ast.SourcePos
	message string
}

// Primary returns the position this diagnostic is about. The position is
// unknown (but may name a file) if the diagnostic has no snippet.
func (d *Diagnostic) Primary() ast.SourcePos {
	if d.snippet == nil {
		return ast.UnknownPos(d.mention)
	}
	return d.snippet.pos
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
type DiagnosticOption func(*Diagnostic)

// MentionFile returns a DiagnosticOption that causes a diagnostic without
// a snippet to mention the given file.
func MentionFile(path string) DiagnosticOption {
	return func(d *Diagnostic) { d.mention = path }
}

// SnippetAt returns a DiagnosticOption that points the diagnostic at pos in
// file, labeled with the given message. file may be nil if its contents are
// not available, in which case only the position is shown.
func SnippetAt(file *ast.FileInfo, pos ast.SourcePos, format string, args ...any) DiagnosticOption {
	return func(d *Diagnostic) {
		d.mention = pos.Filename
		d.snippet = &snippet{file: file, pos: pos, message: fmt.Sprintf(format, args...)}
	}
}

// Note returns a DiagnosticOption that provides the user with context about the
// diagnostic, after the snippet.
func Note(format string, args ...any) DiagnosticOption {
	return func(d *Diagnostic) {
		d.notes = append(d.notes, fmt.Sprintf(format, args...))
	}
}

// Help returns a DiagnosticOption that provides the user with a helpful prose
// suggestion for resolving the diagnostic.
func Help(format string, args ...any) DiagnosticOption {
	return func(d *Diagnostic) {
		d.help = append(d.help, fmt.Sprintf(format, args...))
	}
}

// Report is a collection of diagnostics.
type Report []Diagnostic

// Error pushes an error diagnostic onto this report.
func (r *Report) Error(err error, opts ...DiagnosticOption) {
	r.push(1, err, Error, opts)
}

// AddError converts an error returned by the compiler into a diagnostic.
//
// If err carries a position, the diagnostic points at it, and files (which
// may be nil) is asked for the contents of the file so the offending line
// can be shown. Syntax errors get a label and a hint describing the fix.
func (r *Report) AddError(err error, files func(name string) *ast.FileInfo) {
	var ewp reporter.ErrorWithPos
	if !errors.As(err, &ewp) {
		r.push(1, err, Error, nil)
		return
	}

	pos := ewp.GetPosition()
	opts := []DiagnosticOption{MentionFile(pos.Filename)}
	var (
		eof        *parser.UnexpectedEOFError
		unexpected *parser.UnexpectedTokenError
		unmatched  *parser.UnmatchedBracketError
	)
	label := ""
	switch {
	case errors.As(err, &eof):
		label = fmt.Sprintf("input ends after this %q", eof.After.Kind.Lexeme())
		if len(eof.Expected) == 1 && eof.Expected[0] == ast.JumpBackward {
			opts = append(opts, Help("add the missing %q to close the loop", ast.JumpBackward.Lexeme()))
		}
	case errors.As(err, &unexpected):
		label = fmt.Sprintf("unexpected %q", unexpected.Found.Kind.Lexeme())
		if unexpected.Found.Kind == ast.JumpBackward && unexpected.After != nil &&
			unexpected.After.Kind == ast.JumpForward {
			opts = append(opts, Note("a loop body needs at least one instruction"))
		}
	case errors.As(err, &unmatched):
		label = "this bracket closes nothing"
		opts = append(opts, Help("remove this %q or add a %q before it",
			ast.JumpBackward.Lexeme(), ast.JumpForward.Lexeme()))
	case errors.Is(err, parser.ErrNoInstructions):
		opts = append(opts, Note("only the characters < > + - . , [ ] are instructions; everything else is a comment"))
	}

	if pos.IsKnown() {
		var file *ast.FileInfo
		if files != nil {
			file = files(pos.Filename)
		}
		opts = append(opts, SnippetAt(file, pos, "%s", label))
	}
	r.push(1, ewp.Unwrap(), Error, opts)
}

// push is the core "make me a diagnostic" function.
func (r *Report) push(skip int, err error, level Level, opts []DiagnosticOption) {
	*r = append(*r, Diagnostic{Err: err, Level: level})
	d := &(*r)[len(*r)-1]
	for _, opt := range opts {
		opt(d)
	}

	// If debugging is on, capture a stack trace.
	if debugMode > debugOff {
		pc := make([]uintptr, 64)
		pc = pc[:runtime.Callers(skip+2, pc)]

		var zero runtime.Frame
		frames := runtime.CallersFrames(pc)
		for {
			next, more := frames.Next()
			if next != zero {
				d.trace = append(d.trace, next)
			}
			if !more {
				break
			}
		}
	}
}
