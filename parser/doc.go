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

// Package parser contains the logic for turning source text into a syntax
// tree: a lexer that produces the full token sequence, and a recursive
// descent parser, one method per grammar production, that consumes it.
//
// Parsing stops at the first syntax error. The error is reported through a
// *reporter.Handler and returned; no partial tree is returned with it.
package parser
