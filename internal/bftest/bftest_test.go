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

package bftest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		input  string
		cfg    Config
		output string
		cell0  uint32
	}{
		{name: "output", src: "++.", output: "\x02", cell0: 2},
		{name: "clear loop", src: "[-]", cfg: Config{Tape: []uint32{5}}},
		{name: "comments", src: "+a+", cell0: 2},
		{name: "hello world", src: helloWorld, output: "Hello World!\n"},
		{name: "echo", src: ",.,.", input: "hi", output: "hi", cell0: 'i'},
		{name: "8 bit wraps", src: "-", cell0: 0xff},
		{name: "16 bit wraps", src: "-", cfg: Config{CellBits: 16}, cell0: 0xffff},
		{name: "32 bit wraps", src: "-", cfg: Config{CellBits: 32}, cell0: 0xffffffff},
		{name: "eof unchanged", src: "+,", cell0: 1},
		{name: "eof zero", src: "+,", cfg: Config{EOF: EOFZero}},
		{name: "eof minus one", src: "+,", cfg: Config{EOF: EOFMinusOne, CellBits: 16}, cell0: 0xffff},
		{name: "output truncates wide cells", src: "[-]-.", cfg: Config{CellBits: 16}, output: "\xff", cell0: 0xffff},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			res, err := RunSource(test.src, []byte(test.input), test.cfg)
			require.NoError(t, err)
			assert.Equal(t, test.output, string(res.Output))
			assert.Equal(t, test.cell0, res.Tape[0])
		})
	}
}

func TestClearLoopIterations(t *testing.T) {
	t.Parallel()

	res, err := RunSource("[-]", nil, Config{Tape: []uint32{5}})
	require.NoError(t, err)
	// One "[" check, then five passes of "-" and "]".
	assert.Equal(t, 1+5*2, res.Steps)
	assert.Zero(t, res.Tape[0])
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	_, err := RunSource("<+", nil, Config{})
	require.ErrorIs(t, err, ErrPointerOutOfRange)

	// Moving off the tape is harmless until a cell is touched.
	_, err = RunSource("<>+", nil, Config{})
	require.NoError(t, err)

	_, err = RunSource("+[]", nil, Config{})
	require.Error(t, err)

	_, err = RunSource("+[+]", nil, Config{CellBits: 32, MaxSteps: 1000})
	require.ErrorIs(t, err, ErrStepLimit)

	_, err = RunSource("+", nil, Config{CellBits: 12})
	require.EqualError(t, err, "bftest: unsupported cell width 12")
}
