// Package source provides positions, areas, and the line-indexed source
// buffer the scanner and diagnostics work against.
package source

import (
	"bufio"
	"io"
	"strings"
)

// Position is a location inside a source buffer. Line and Column are 1-based;
// Offset is the raw byte offset and is never shifted by #line directives.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Valid reports whether the position points into real source text.
func (p Position) Valid() bool {
	return p.Line > 0 && p.Column > 0
}

// Area is a source span: an origin position plus a length in characters.
type Area struct {
	Pos    Position
	Length int
}

// Valid reports whether the area points into real source text.
func (a Area) Valid() bool {
	return a.Pos.Valid() && a.Length > 0
}

// Update extends the area so it also covers the given spelling.
func (a *Area) Update(spell string) {
	if n := len(spell); n > a.Length {
		a.Length = n
	}
}

// origin records a logical file/line remapping introduced by a #line directive.
type origin struct {
	fromLine   int    // first physical line the origin applies to
	lineOffset int    // logical = physical + lineOffset
	filename   string // logical filename, empty keeps the previous one
}

// Code is an immutable, line-indexed text store for one translation unit.
type Code struct {
	filename string
	text     string
	lines    []string
	origins  []origin
}

// NewCode reads the entire stream into a line-indexed buffer.
func NewCode(filename string, r io.Reader) (*Code, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := string(raw)
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return &Code{filename: filename, text: text, lines: lines}, nil
}

// Text returns the full buffer contents.
func (c *Code) Text() string {
	return c.text
}

// NewCodeFromString is a convenience wrapper for tests and in-memory input.
func NewCodeFromString(filename, text string) *Code {
	c, _ := NewCode(filename, strings.NewReader(text))
	return c
}

// Filename returns the name the buffer was loaded under.
func (c *Code) Filename() string {
	return c.filename
}

// NumLines returns the number of physical lines.
func (c *Code) NumLines() int {
	return len(c.lines)
}

// Line returns the physical line with the given 1-based number, or "" when the
// position points into a synthesized token.
func (c *Code) Line(n int) string {
	if n < 1 || n > len(c.lines) {
		return ""
	}
	return c.lines[n-1]
}

// ShiftOrigin remaps the logical origin of all lines at or after fromLine, as
// induced by a '#line' directive. An empty filename keeps the current one.
func (c *Code) ShiftOrigin(fromLine, lineOffset int, filename string) {
	c.origins = append(c.origins, origin{fromLine: fromLine, lineOffset: lineOffset, filename: filename})
}

// Resolve maps a physical position to its logical position, applying any
// origin shifts that cover it.
func (c *Code) Resolve(pos Position) Position {
	pos.Filename = c.filename
	for _, o := range c.origins {
		if pos.Line >= o.fromLine {
			pos.Line += o.lineOffset
			if o.filename != "" {
				pos.Filename = o.filename
			}
		}
	}
	return pos
}
