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

package parser

import (
	"bytes"
	"io"
	"unicode/utf8"

	"github.com/bfcompile/bfcompile/ast"
)

var utf8Bom = []byte{0xEF, 0xBB, 0xBF}

// StripBOM returns data without its leading UTF-8 byte order mark, if it
// has one.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8Bom)
}

// Tokenize reads all of r and lexes it, skipping a leading byte order mark.
// It only fails if reading fails.
func Tokenize(filename string, r io.Reader) ([]ast.Token, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Lex(filename, StripBOM(contents)), nil
}

// Lex scans data once and returns its tokens in program order.
//
// Every character other than the eight lexemes is a comment and produces no
// token. Positions count characters: each one advances the column, and a
// newline additionally moves to column 1 of the next line. Bytes that are not
// valid UTF-8 count as one character each.
func Lex(filename string, data []byte) []ast.Token {
	var tokens []ast.Token
	line, col := 1, 1
	for offset := 0; offset < len(data); {
		r, size := utf8.DecodeRune(data[offset:])
		if r == '\n' {
			line++
			col = 1
			offset += size
			continue
		}
		if kind, ok := ast.TokenKindOf(r); ok {
			tokens = append(tokens, ast.Token{
				Kind: kind,
				Pos: ast.SourcePos{
					Filename: filename,
					Line:     line,
					Col:      col,
					Offset:   offset,
				},
			})
		}
		col++
		offset += size
	}
	return tokens
}
