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

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"
)

// The size we render all tabstops as.
const TabstopWidth int = 4

// Render renders this diagnostic report in a format suitable for showing to a user.
func (r Report) Render(style Style) string {
	var out strings.Builder
	for _, diagnostic := range r {
		out.WriteString(diagnostic.Render(style))
		out.WriteString("\n")
		if style != Simple {
			out.WriteString("\n")
		}
	}
	if style == Simple || len(r) == 0 {
		return out.String()
	}

	colors := newPalette(style)
	noun := "errors"
	if len(r) == 1 {
		noun = "error"
	}
	out.WriteString(colors.forLevel(Error)(fmt.Sprintf("encountered %d %s", len(r), noun)))
	out.WriteString("\n")
	return out.String()
}

// Render renders this diagnostic in a format suitable for showing to a user.
func (d *Diagnostic) Render(style Style) string {
	level := "error"
	pos := d.Primary()

	// For the simple style, we imitate the Go compiler.
	if style == Simple {
		if pos.Filename == "" {
			return fmt.Sprintf("%s: %s", level, d.Err.Error())
		}
		return fmt.Sprintf("%s: %s: %s", level, pos, d.Err.Error())
	}

	// For the other styles, we imitate the Rust compiler.
	colors := newPalette(style)
	var out strings.Builder
	out.WriteString(colors.forLevel(d.Level)(level + ": " + d.Err.Error()))

	lineBarWidth := 2
	if pos.IsKnown() {
		lineBarWidth = max(lineBarWidth, len(fmt.Sprint(pos.Line)))
	}
	gutter := strings.Repeat(" ", lineBarWidth)

	path := pos.Filename
	if path == "" {
		path = "<unknown>"
	}
	out.WriteByte('\n')
	if pos.IsKnown() {
		out.WriteString(colors.gutter(fmt.Sprintf("%s--> %s:%d:%d", gutter, path, pos.Line, pos.Col)))
	} else {
		out.WriteString(colors.gutter(fmt.Sprintf("%s--> %s", gutter, path)))
	}

	if d.snippet != nil && d.snippet.file != nil {
		if text, ok := d.snippet.file.Line(pos.Line); ok {
			d.renderSnippet(&out, colors, gutter, text)
		}
	}

	// Render the footers. For simplicity we collect them into an array first.
	var footers [][2]string
	for _, note := range d.notes {
		footers = append(footers, [2]string{"note", note})
	}
	for _, help := range d.help {
		footers = append(footers, [2]string{"help", help})
	}
	for i, frame := range d.trace {
		if debugMode < debugFull && i > 0 {
			break
		}
		footers = append(footers, [2]string{"debug", fmt.Sprintf("at %s", frame.Function)})
		footers = append(footers, [2]string{"debug", fmt.Sprintf("   %s:%d", frame.File, frame.Line)})
	}
	for _, footer := range footers {
		out.WriteByte('\n')
		out.WriteString(colors.gutter(gutter + " ="))
		out.WriteString(" ")
		out.WriteString(colors.forLevel(note)(footer[0] + ":"))
		out.WriteString(" ")
		out.WriteString(footer[1])
	}

	return out.String()
}

// renderSnippet writes the source line containing the diagnostic and a caret
// under the offending character.
func (d *Diagnostic) renderSnippet(out *strings.Builder, colors palette, gutter, text string) {
	pos := d.snippet.pos

	out.WriteByte('\n')
	out.WriteString(colors.gutter(gutter + " |"))

	line := expandTabs(text)
	out.WriteByte('\n')
	out.WriteString(colors.gutter(fmt.Sprintf("%*d |", len(gutter), pos.Line)))
	if line != "" {
		out.WriteString(" ")
		out.WriteString(line)
	}

	// Columns count characters, so the caret goes after the display width
	// of the first Col-1 of them.
	prefix := []rune(text)
	if n := pos.Col - 1; n < len(prefix) {
		prefix = prefix[:n]
	}
	pad := uniseg.StringWidth(expandTabs(string(prefix)))

	caret := "^"
	if d.snippet.message != "" {
		caret += " " + d.snippet.message
	}
	out.WriteByte('\n')
	out.WriteString(colors.gutter(gutter + " |"))
	out.WriteString(" ")
	out.WriteString(strings.Repeat(" ", pad))
	out.WriteString(colors.forLevel(d.Level)(caret))
}

// expandTabs replaces tabs with spaces up to the next tabstop.
func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	col := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			n := TabstopWidth - col%TabstopWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(cluster)
		col += width
	}
	return b.String()
}

// palette is the colors used for pretty-rendering diagnostics. In the
// monochrome style every function is the identity.
type palette struct {
	err, info, gutter func(string) string
}

func newPalette(style Style) palette {
	if style != Colored {
		identity := func(s string) string { return s }
		return palette{err: identity, info: identity, gutter: identity}
	}

	// Colored output is requested explicitly, so it does not depend on
	// whether the process is attached to a terminal.
	renderer := lipgloss.NewRenderer(io.Discard)
	renderer.SetColorProfile(termenv.ANSI)
	paint := func(color string) func(string) string {
		s := renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
		return func(text string) string { return s.Render(text) }
	}
	return palette{
		err:    paint("9"),  // Bright red.
		info:   paint("14"), // Bright cyan.
		gutter: paint("12"), // Bright blue.
	}
}

func (p palette) forLevel(l Level) func(string) string {
	if l == note {
		return p.info
	}
	return p.err
}
