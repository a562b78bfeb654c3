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

package codegen

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultTapeSize is the number of cells on the tape unless configured
// otherwise.
const DefaultTapeSize = 30000

// ErrInvalidOptions is wrapped by every error returned from
// [Options.Validate].
var ErrInvalidOptions = errors.New("invalid code generation options")

// Target is the language code is generated in.
type Target int

const (
	TargetC Target = iota
	TargetGo
)

// ParseTarget converts the name of a target, as printed by
// [Target.String], back into a Target.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "c":
		return TargetC, nil
	case "go":
		return TargetGo, nil
	default:
		return 0, fmt.Errorf("%w: unknown target %q", ErrInvalidOptions, s)
	}
}

// String implements [fmt.Stringer].
func (t Target) String() string {
	switch t {
	case TargetC:
		return "c"
	case TargetGo:
		return "go"
	default:
		return fmt.Sprintf("codegen.Target(%d)", int(t))
	}
}

// Extension returns the file extension for source files in this target,
// including the leading dot.
func (t Target) Extension() string {
	return "." + t.String()
}

// EOF says what an input instruction stores in the current cell when there
// is no more input.
type EOF int

const (
	// The cell keeps its value.
	EOFUnchanged EOF = iota
	// The cell is set to zero.
	EOFZero
	// The cell is set to its maximum value (all bits set).
	EOFMinusOne
)

// ParseEOF converts the name of an EOF policy, as printed by [EOF.String],
// back into an EOF.
func ParseEOF(s string) (EOF, error) {
	switch strings.ToLower(s) {
	case "unchanged", "":
		return EOFUnchanged, nil
	case "zero", "0":
		return EOFZero, nil
	case "minus-one", "-1":
		return EOFMinusOne, nil
	default:
		return 0, fmt.Errorf("%w: unknown EOF behavior %q", ErrInvalidOptions, s)
	}
}

// String implements [fmt.Stringer].
func (e EOF) String() string {
	switch e {
	case EOFUnchanged:
		return "unchanged"
	case EOFZero:
		return "zero"
	case EOFMinusOne:
		return "minus-one"
	default:
		return fmt.Sprintf("codegen.EOF(%d)", int(e))
	}
}

// Options controls the shape of generated programs. The zero value is
// valid and means C, with a tape of [DefaultTapeSize] 8-bit cells that keep
// their value at end of input.
type Options struct {
	Target   Target
	TapeSize int
	CellBits int
	EOF      EOF
}

// Validate checks that o describes a program that can be generated.
func (o Options) Validate() error {
	var errs []error
	if o.Target != TargetC && o.Target != TargetGo {
		errs = append(errs, fmt.Errorf("%w: unknown target %v", ErrInvalidOptions, o.Target))
	}
	if o.TapeSize < 0 {
		errs = append(errs, fmt.Errorf("%w: tape size must be positive, got %d", ErrInvalidOptions, o.TapeSize))
	}
	switch o.CellBits {
	case 0, 8, 16, 32:
	default:
		errs = append(errs, fmt.Errorf("%w: cell width must be 8, 16 or 32 bits, got %d", ErrInvalidOptions, o.CellBits))
	}
	if o.EOF < EOFUnchanged || o.EOF > EOFMinusOne {
		errs = append(errs, fmt.Errorf("%w: unknown EOF behavior %v", ErrInvalidOptions, o.EOF))
	}
	return errors.Join(errs...)
}

func (o Options) withDefaults() Options {
	if o.TapeSize == 0 {
		o.TapeSize = DefaultTapeSize
	}
	if o.CellBits == 0 {
		o.CellBits = 8
	}
	return o
}
