package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/stemsi/paperdesk/internal/layout"
)

// CorrectMarker is appended to the correct option in answer keys.
const CorrectMarker = "  ✓"

// TextRenderer renders documents as plain text wrapped to Width columns.
type TextRenderer struct {
	Width int
}

// NewTextRenderer creates a text renderer; widths below 40 columns are raised
// to 40.
func NewTextRenderer(width int) *TextRenderer {
	if width < 40 {
		width = 40
	}
	return &TextRenderer{Width: width}
}

// ContentType is the MIME type of the rendered output.
func (r *TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes doc to w as wrapped plain text.
func (r *TextRenderer) Render(ctx context.Context, doc *Document, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	var b bytes.Buffer
	center := func(s string) {
		if pad := (r.Width - len([]rune(s))) / 2; pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}
	block := func(s string, inset int) {
		lines := layout.WrapColumns(s, r.Width-inset)
		b.WriteString(indent.String(strings.Join(lines, "\n"), uint(inset)))
		b.WriteByte('\n')
	}
	rule := strings.Repeat("─", r.Width)

	center(doc.SchoolName)
	center(doc.Address)
	center(doc.ExamType)
	b.WriteByte('\n')
	block(joinCells(doc.ExamRow), 0)
	block(joinCells(doc.PaperRow), 0)
	b.WriteString(rule + "\n")

	b.WriteString(InstructionsTitle + "\n")
	for _, line := range doc.Instructions {
		block(line, 2)
	}
	b.WriteString(rule + "\n\n")

	b.WriteString(doc.Title + "\n\n")
	for _, s := range doc.Sections {
		block(s.Heading, 0)
		b.WriteByte('\n')
		for _, q := range s.Questions {
			block(q.Label(), 2)
			for _, o := range q.Options {
				label := o.Label()
				if o.Correct {
					label += CorrectMarker
				}
				block(label, 6)
			}
			if q.Answer != "" {
				block("Answer: "+q.Answer, 4)
				block("Marks: "+q.Marks, 4)
			}
			b.WriteByte('\n')
		}
	}

	if _, err := io.Copy(w, &b); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

func joinCells(cells []Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.Text()
	}
	return strings.Join(parts, "   ")
}
