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

// Package bftest contains a reference interpreter for syntax trees. Tests use
// it to decide what a generated program is supposed to do.
package bftest

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/bfcompile/bfcompile/ast"
	"github.com/bfcompile/bfcompile/parser"
	"github.com/bfcompile/bfcompile/walk"
)

var (
	// ErrPointerOutOfRange is returned when a program moves the pointer off
	// either end of the tape and then touches the cell there.
	ErrPointerOutOfRange = errors.New("bftest: pointer out of range")
	// ErrStepLimit is returned when a program runs longer than allowed.
	ErrStepLimit = errors.New("bftest: step limit exceeded")
)

// EOF says what reading past the end of the input stores in the cell.
type EOF int

const (
	EOFUnchanged EOF = iota
	EOFZero
	EOFMinusOne
)

// Config configures a run.
type Config struct {
	TapeSize int // Defaults to 30000.
	CellBits int // 8, 16 or 32. Defaults to 8.
	EOF      EOF
	MaxSteps int // Zero means no limit.
	// Initial values for the first cells of the tape.
	Tape []uint32
}

// Result is the observable outcome of a run.
type Result struct {
	Output []byte
	// The whole tape, widened to uint32.
	Tape    []uint32
	Pointer int
	Steps   int
}

// RunSource parses src and runs it.
func RunSource(src string, input []byte, cfg Config) (*Result, error) {
	tree, err := parser.Parse("bftest.bf", parser.Lex("bftest.bf", []byte(src)), nil)
	if err != nil {
		return nil, err
	}
	return Run(tree.Root(), input, cfg)
}

// Run interprets the program rooted at root with cells of cfg.CellBits.
func Run(root ast.Node, input []byte, cfg Config) (*Result, error) {
	switch cfg.CellBits {
	case 0, 8:
		return run[uint8](root, input, cfg)
	case 16:
		return run[uint16](root, input, cfg)
	case 32:
		return run[uint32](root, input, cfg)
	default:
		return nil, fmt.Errorf("bftest: unsupported cell width %d", cfg.CellBits)
	}
}

type instruction struct {
	kind   ast.TokenKind
	target int // for brackets, the index of the matching bracket
}

func compile(root ast.Node) ([]instruction, error) {
	var prog []instruction
	var open []int
	err := walk.Terminals(root, func(n ast.Node) error {
		inst := instruction{kind: n.Symbol().TokenKind()}
		switch inst.kind {
		case ast.JumpForward:
			open = append(open, len(prog))
		case ast.JumpBackward:
			if len(open) == 0 {
				return fmt.Errorf("bftest: unbalanced %v", n)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			inst.target = start
			prog[start].target = len(prog)
		}
		prog = append(prog, inst)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(open) > 0 {
		return nil, errors.New("bftest: unbalanced tree")
	}
	return prog, nil
}

func run[C constraints.Unsigned](root ast.Node, input []byte, cfg Config) (*Result, error) {
	prog, err := compile(root)
	if err != nil {
		return nil, err
	}
	size := cfg.TapeSize
	if size == 0 {
		size = 30000
	}
	tape := make([]C, size)
	for i, v := range cfg.Tape {
		tape[i] = C(v)
	}

	res := &Result{}
	ptr := 0
	for pc := 0; pc < len(prog); pc++ {
		res.Steps++
		if cfg.MaxSteps > 0 && res.Steps > cfg.MaxSteps {
			return nil, ErrStepLimit
		}
		inst := prog[pc]
		if inst.kind == ast.MoveLeft {
			ptr--
			continue
		}
		if inst.kind == ast.MoveRight {
			ptr++
			continue
		}
		if ptr < 0 || ptr >= len(tape) {
			return nil, fmt.Errorf("%w: %d", ErrPointerOutOfRange, ptr)
		}
		switch inst.kind {
		case ast.Increment:
			tape[ptr]++
		case ast.Decrement:
			tape[ptr]--
		case ast.Output:
			res.Output = append(res.Output, byte(tape[ptr]))
		case ast.Input:
			if len(input) > 0 {
				tape[ptr] = C(input[0])
				input = input[1:]
				break
			}
			switch cfg.EOF {
			case EOFZero:
				tape[ptr] = 0
			case EOFMinusOne:
				tape[ptr] = ^C(0)
			}
		case ast.JumpForward:
			if tape[ptr] == 0 {
				pc = inst.target
			}
		case ast.JumpBackward:
			if tape[ptr] != 0 {
				pc = inst.target
			}
		}
	}

	res.Pointer = ptr
	res.Tape = make([]uint32, len(tape))
	for i, v := range tape {
		res.Tape[i] = uint32(v)
	}
	return res, nil
}
