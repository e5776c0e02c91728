package layout

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Splitter breaks text into lines no wider than width when drawn in style.
type Splitter interface {
	SplitLines(text string, style Style, width float64) []string
}

// MonospaceSplitter wraps on word boundaries assuming every character has
// the same advance. Words longer than a line are hard-broken.
type MonospaceSplitter struct {
	// CharWidth is the advance of one character in layout units.
	// Zero means 1, so width is a column count.
	CharWidth float64
}

// Columns converts a layout width into a character count.
func (s MonospaceSplitter) Columns(width float64) int {
	cw := s.CharWidth
	if cw <= 0 {
		cw = 1
	}
	cols := int(width / cw)
	if cols < 1 {
		cols = 1
	}
	return cols
}

// SplitLines implements Splitter. Blank input yields one empty line so the
// caller still reserves a row for it.
func (s MonospaceSplitter) SplitLines(text string, _ Style, width float64) []string {
	return WrapColumns(text, s.Columns(width))
}

// WrapColumns word-wraps text to cols columns, hard-breaking long words and
// keeping explicit newlines.
func WrapColumns(text string, cols int) []string {
	wrapped := wrap.String(wordwrap.String(text, cols), cols)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}
