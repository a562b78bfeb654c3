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

package ast

import (
	"fmt"
	"strings"
)

// SourcePos identifies a location in a source file.
//
// Line and Col are 1-based and count characters of the original input,
// including ignored ones. Offset is the 0-based byte offset.
type SourcePos struct {
	Filename  string
	Line, Col int
	Offset    int
}

// UnknownPos is a placeholder position when only the source file
// name is known.
func UnknownPos(filename string) SourcePos {
	return SourcePos{Filename: filename}
}

// IsKnown reports whether pos carries a line and column.
func (pos SourcePos) IsKnown() bool {
	return pos.Line > 0 && pos.Col > 0
}

func (pos SourcePos) String() string {
	if !pos.IsKnown() {
		return pos.Filename
	}
	if pos.Filename == "" {
		return fmt.Sprintf("%d:%d", pos.Line, pos.Col)
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Col)
}

// Before reports whether pos comes strictly before other in the same file.
func (pos SourcePos) Before(other SourcePos) bool {
	if pos.Line != other.Line {
		return pos.Line < other.Line
	}
	return pos.Col < other.Col
}

// FileInfo holds the contents of a source file together with the offsets at
// which its lines begin, so that line text can be recovered for a position.
// It is used when rendering diagnostics.
type FileInfo struct {
	// The name of the source file.
	name string
	// The raw contents of the source file.
	data []byte
	// The zero-based byte offset of each line. The value at index 0 is always
	// zero; the value at index n is the offset just past the n-th newline.
	lines []int
}

// NewFileInfo creates a new instance for the given file.
func NewFileInfo(filename string, contents []byte) *FileInfo {
	f := &FileInfo{name: filename, data: contents, lines: []int{0}}
	for i, b := range contents {
		if b == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

func (f *FileInfo) Name() string {
	return f.name
}

// Contents returns the raw contents of the file. The caller must not modify
// the returned slice.
func (f *FileInfo) Contents() []byte {
	return f.data
}

// Line returns the text of the given 1-based line, without its line
// terminator. Returns false if the file has no such line.
func (f *FileInfo) Line(n int) (string, bool) {
	if n < 1 || n > len(f.lines) {
		return "", false
	}
	start := f.lines[n-1]
	end := len(f.data)
	if n < len(f.lines) {
		end = f.lines[n] - 1
	}
	return strings.TrimSuffix(string(f.data[start:end]), "\r"), true
}
