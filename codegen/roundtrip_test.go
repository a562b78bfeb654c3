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

package codegen_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bfcompile/bfcompile/codegen"
	"github.com/bfcompile/bfcompile/internal/bftest"
)

type program struct {
	name  string
	src   string
	input string
	opts  codegen.Options
}

var programs = []program{
	{name: "two", src: "++."},
	{name: "comment", src: "+a+."},
	{name: "hello", src: "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."},
	{name: "cat", src: ",[.,]", input: "round trip\n", opts: codegen.Options{EOF: codegen.EOFZero}},
	{name: "set five then clear", src: "+++++[-]+++++++++++++++++++++++++++++++++++++++++++++++++."},
	{name: "wrap 8", src: "-.", opts: codegen.Options{CellBits: 8}},
	{name: "wrap 16", src: "-[->+<]>.", opts: codegen.Options{CellBits: 16, TapeSize: 4}},
	{name: "eof zero", src: "+,.", opts: codegen.Options{EOF: codegen.EOFZero}},
	{name: "eof minus one", src: ",.", opts: codegen.Options{EOF: codegen.EOFMinusOne}},
	{name: "eof unchanged", src: "+++,.", input: "", opts: codegen.Options{EOF: codegen.EOFUnchanged}},
	{name: "interleaved io", src: ".,.,.", input: "ab", opts: codegen.Options{CellBits: 32}},
}

// How long a generated program may run. Every program in the table halts
// well within the interpreter's step limit.
const runTimeout = 10 * time.Second

// TestProgramsHalt checks the round-trip table against the interpreter
// alone, so that a program that never halts is caught without a toolchain.
func TestProgramsHalt(t *testing.T) {
	t.Parallel()

	for _, p := range programs {
		t.Run(p.name, func(t *testing.T) {
			t.Parallel()
			expectedOutput(t, p)
		})
	}

	_, err := bftest.RunSource(",[.,]", []byte("x"), bftest.Config{MaxSteps: 1_000_000})
	assert.ErrorIs(t, err, bftest.ErrStepLimit)
}

func expectedOutput(t *testing.T, p program) []byte {
	t.Helper()
	res, err := bftest.RunSource(p.src, []byte(p.input), bftest.Config{
		TapeSize: p.opts.TapeSize,
		CellBits: p.opts.CellBits,
		EOF:      bftest.EOF(p.opts.EOF),
		MaxSteps: 1_000_000,
	})
	require.NoError(t, err)
	return res.Output
}

// TestRoundTrip builds and runs the generated programs with the host's
// toolchains and checks that they behave like the reference interpreter.
// Targets whose toolchain is missing are skipped.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	if testing.Short() {
		t.Skip("builds programs with external toolchains")
	}

	targets := []struct {
		target codegen.Target
		tool   string
		build  func(t *testing.T, tool, dir, src string) string
	}{
		{target: codegen.TargetC, tool: "cc", build: buildC},
		{target: codegen.TargetGo, tool: "go", build: buildGo},
	}
	for _, target := range targets {
		t.Run(target.target.String(), func(t *testing.T) {
			t.Parallel()
			tool, err := exec.LookPath(target.tool)
			if err != nil {
				t.Skipf("%s not found on PATH", target.tool)
			}
			for _, p := range programs {
				t.Run(p.name, func(t *testing.T) {
					t.Parallel()
					opts := p.opts
					opts.Target = target.target
					code, err := codegen.Generate(mustParse(t, p.src), opts)
					require.NoError(t, err)

					dir := t.TempDir()
					src := filepath.Join(dir, "main"+target.target.Extension())
					require.NoError(t, os.WriteFile(src, code.Bytes(), 0o600))
					bin := target.build(t, tool, dir, src)

					ctx, cancel := context.WithTimeout(t.Context(), runTimeout)
					defer cancel()
					cmd := exec.CommandContext(ctx, bin)
					cmd.Stdin = bytes.NewReader([]byte(p.input))
					got, err := cmd.Output()
					require.NoError(t, ctx.Err(), "program did not halt")
					require.NoError(t, err)
					assert.Equal(t, expectedOutput(t, p), got)
				})
			}
		})
	}
}

func buildC(t *testing.T, cc, dir, src string) string {
	t.Helper()
	bin := filepath.Join(dir, "prog")
	out, err := exec.Command(cc, "-std=c99", "-Wall", "-Werror", "-o", bin, src).CombinedOutput()
	require.NoError(t, err, "%s", out)
	return bin
}

func buildGo(t *testing.T, goTool, dir, src string) string {
	t.Helper()
	bin := filepath.Join(dir, "prog")
	cmd := exec.Command(goTool, "build", "-o", bin, src)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GO111MODULE=off", "GOFLAGS=")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "%s", out)
	return bin
}

// TestInterpreterScenarios pins down the behavior the round trip compares
// against.
func TestInterpreterScenarios(t *testing.T) {
	t.Parallel()

	out := expectedOutput(t, program{src: "++."})
	assert.Equal(t, []byte{2}, out)

	res, err := bftest.Run(mustParse(t, "[-]"), nil, bftest.Config{Tape: []uint32{5}})
	require.NoError(t, err)
	assert.Zero(t, res.Tape[0])
	assert.Equal(t, 11, res.Steps)

	res, err = bftest.Run(mustParse(t, "+a+"), nil, bftest.Config{})
	require.NoError(t, err)
	assert.Equal(t, uint32(2), res.Tape[0])
}
