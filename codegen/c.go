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

// cDialect generates C99. The tape is a static array and the pointer is a
// pointer into it. Unsigned arithmetic gives the wrapping the cells need.
type cDialect struct{}

func (cDialect) indent() string {
	return "    "
}

func (cDialect) statement(kind ast.TokenKind, opts Options) string {
	switch kind {
	case ast.MoveLeft:
		return "--ptr;"
	case ast.MoveRight:
		return "++ptr;"
	case ast.Increment:
		return "++*ptr;"
	case ast.Decrement:
		return "--*ptr;"
	case ast.Output:
		if opts.CellBits == 8 {
			return "putchar(*ptr);"
		}
		return "putchar((unsigned char)*ptr);"
	case ast.Input:
		return "read_cell(ptr);"
	default:
		panic(fmt.Sprintf("codegen: no statement for %v", kind))
	}
}

func (cDialect) loopOpen() string {
	return "while (*ptr) {"
}

func (cDialect) loopClose() string {
	return "}"
}

func (d cDialect) file(out *strings.Builder, source string, g *generator) {
	cell := fmt.Sprintf("uint%d_t", g.opts.CellBits)

	fmt.Fprintf(out, "/* Generated by bfc from %s. Do not edit. */\n", source)
	out.WriteString("#include <stdint.h>\n")
	out.WriteString("#include <stdio.h>\n\n")
	fmt.Fprintf(out, "static %s tape[%d];\n\n", cell, g.opts.TapeSize)

	if g.used.input {
		fmt.Fprintf(out, "static void read_cell(%s *cell) {\n", cell)
		out.WriteString("    int c = getchar();\n")
		out.WriteString("    if (c != EOF) {\n")
		fmt.Fprintf(out, "        *cell = (%s)c;\n", cell)
		switch g.opts.EOF {
		case EOFZero:
			out.WriteString("    } else {\n")
			out.WriteString("        *cell = 0;\n")
		case EOFMinusOne:
			out.WriteString("    } else {\n")
			fmt.Fprintf(out, "        *cell = UINT%d_MAX;\n", g.opts.CellBits)
		}
		out.WriteString("    }\n")
		out.WriteString("}\n\n")
	}

	out.WriteString("int main(void) {\n")
	fmt.Fprintf(out, "%s%s *ptr = tape;\n", d.indent(), cell)
	out.WriteString(g.body.String())
	fmt.Fprintf(out, "%sreturn 0;\n", d.indent())
	out.WriteString("}\n")
}
