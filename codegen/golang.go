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
	"fmt"
	"strings"

	"github.com/bfcompile/bfcompile/ast"
)

// goDialect generates a gofmt-clean main package. The tape is a slice and
// the pointer an index into it, so running off the tape panics with an
// index out of range.
//
// The Go compiler rejects unused imports and variables, so the prologue
// only declares the readers and writers the body uses.
type goDialect struct{}

func (goDialect) indent() string {
	return "\t"
}

func (goDialect) statement(kind ast.TokenKind, _ Options) string {
	switch kind {
	case ast.MoveLeft:
		return "ptr--"
	case ast.MoveRight:
		return "ptr++"
	case ast.Increment:
		return "tape[ptr]++"
	case ast.Decrement:
		return "tape[ptr]--"
	case ast.Output:
		return "out.WriteByte(byte(tape[ptr]))"
	case ast.Input:
		return "tape[ptr] = read(tape[ptr])"
	default:
		panic(fmt.Sprintf("codegen: no statement for %v", kind))
	}
}

func (goDialect) loopOpen() string {
	return "for tape[ptr] != 0 {"
}

func (goDialect) loopClose() string {
	return "}"
}

func (goDialect) file(out *strings.Builder, source string, g *generator) {
	cell := fmt.Sprintf("uint%d", g.opts.CellBits)

	fmt.Fprintf(out, "// Code generated by bfc from %s. DO NOT EDIT.\n\n", source)
	out.WriteString("package main\n\n")
	if g.used.input || g.used.output {
		out.WriteString("import (\n\t\"bufio\"\n\t\"os\"\n)\n\n")
	}

	out.WriteString("func main() {\n")
	fmt.Fprintf(out, "\ttape := make([]%s, %d)\n", cell, g.opts.TapeSize)
	out.WriteString("\tptr := 0\n")
	if !g.used.cells {
		out.WriteString("\t_, _ = tape, ptr\n")
	}
	if g.used.output {
		out.WriteString("\tout := bufio.NewWriter(os.Stdout)\n")
		out.WriteString("\tdefer out.Flush()\n")
	}
	if g.used.input {
		out.WriteString("\tin := bufio.NewReader(os.Stdin)\n")
		fmt.Fprintf(out, "\tread := func(cell %s) %s {\n", cell, cell)
		if g.used.output {
			out.WriteString("\t\tout.Flush()\n")
		}
		out.WriteString("\t\tc, err := in.ReadByte()\n")
		out.WriteString("\t\tif err != nil {\n")
		switch g.opts.EOF {
		case EOFZero:
			out.WriteString("\t\t\treturn 0\n")
		case EOFMinusOne:
			fmt.Fprintf(out, "\t\t\treturn ^%s(0)\n", cell)
		default:
			out.WriteString("\t\t\treturn cell\n")
		}
		out.WriteString("\t\t}\n")
		fmt.Fprintf(out, "\t\treturn %s(c)\n", cell)
		out.WriteString("\t}\n")
	}
	out.WriteString(g.body.String())
	out.WriteString("}\n")
}
