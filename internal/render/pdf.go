package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/layout"
)

type fontSpec struct {
	style string
	size  float64
	rgb   [3]int
}

var pdfFonts = map[layout.Style]fontSpec{
	layout.StyleSchoolName:        {"B", 18, [3]int{0, 0, 0}},
	layout.StyleAddress:           {"", 12, [3]int{0, 0, 0}},
	layout.StyleExamType:          {"B", 16, [3]int{0, 0, 0}},
	layout.StyleDetails:           {"", 11, [3]int{0, 0, 0}},
	layout.StyleInstructionsTitle: {"B", 12, [3]int{0, 0, 0}},
	layout.StyleInstruction:       {"", 10, [3]int{0, 0, 0}},
	layout.StyleTitle:             {"B", 14, [3]int{0, 0, 0}},
	layout.StyleSection:           {"B", 12, [3]int{0, 0, 0}},
	layout.StyleQuestion:          {"", 11, [3]int{0, 0, 0}},
	layout.StyleOption:            {"", 11, [3]int{0, 0, 0}},
	layout.StyleOptionCorrect:     {"B", 11, [3]int{46, 125, 50}},
	layout.StyleAnswer:            {"B", 11, [3]int{0, 0, 0}},
	layout.StyleMarks:             {"", 11, [3]int{0, 0, 0}},
}

const pdfFontFamily = "Helvetica"

// PDFRenderer draws documents as A4 PDFs with the core Helvetica fonts.
type PDFRenderer struct {
	geom layout.Geometry
	log  zerolog.Logger
}

// NewPDFRenderer creates an A4 PDF renderer.
func NewPDFRenderer(log zerolog.Logger) *PDFRenderer {
	return &PDFRenderer{
		geom: layout.A4,
		log:  log.With().Str("component", "pdf_renderer").Logger(),
	}
}

// ContentType is the MIME type of the rendered output.
func (r *PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render writes doc to w as a PDF. The whole file is built in memory first,
// so w receives either a complete document or nothing.
func (r *PDFRenderer) Render(ctx context.Context, doc *Document, w io.Writer) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("PDF generation panicked")
			err = fmt.Errorf("%w: %v", ErrRenderFailed, rec)
		}
	}()

	buf, err := r.build(doc)
	if err != nil {
		r.log.Error().Err(err).Msg("PDF generation failed")
		return fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	if _, err := io.Copy(w, buf); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Plan paginates doc with the PDF font metrics without producing a file.
func (r *PDFRenderer) Plan(doc *Document) (*layout.Plan, error) {
	pdf := r.newPDF()
	enc := newEncoder(pdf)
	plan := Paginate(translateDocument(doc, enc.encode), r.geom, &pdfSplitter{pdf: pdf})
	if pdf.Err() {
		return nil, pdf.Error()
	}
	return plan, nil
}

func (r *PDFRenderer) newPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(r.geom.Margin, r.geom.Margin, r.geom.Margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont(pdfFontFamily, "", 11)
	return pdf
}

func (r *PDFRenderer) build(doc *Document) (*bytes.Buffer, error) {
	pdf := r.newPDF()
	enc := newEncoder(pdf)
	plan := Paginate(translateDocument(doc, enc.encode), r.geom, &pdfSplitter{pdf: pdf})
	if lost := enc.Lost(); len(lost) > 0 {
		r.log.Warn().
			Int("characters", len(lost)).
			Str("sample", string(lost[:min(len(lost), 12)])).
			Msg("PDF fonts cannot encode some characters, they print as '.'")
	}

	for page := 1; page <= plan.Pages; page++ {
		pdf.AddPage()
		for _, it := range plan.PageItems(page) {
			drawItem(pdf, it)
		}
	}

	if pdf.Err() {
		return nil, pdf.Error()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// pdfFallbacks spells out common symbols that code page 1252 lacks.
var pdfFallbacks = strings.NewReplacer(
	"π", "pi",
	"√", "sqrt",
	"≤", "<=",
	"≥", ">=",
	"≠", "!=",
	"≈", "~",
	"∞", "infinity",
	"→", "->",
	"←", "<-",
	"−", "-",
	"∆", "Delta",
	"Δ", "Delta",
	"θ", "theta",
	"α", "alpha",
	"β", "beta",
	"γ", "gamma",
	"λ", "lambda",
	"μ", "mu",
	"Ω", "Ohm",
)

// encoder converts UTF-8 text to the code page of the core fonts and
// remembers every rune the code page could not represent.
type encoder struct {
	tr   func(string) string
	lost map[rune]struct{}
}

func newEncoder(pdf *gofpdf.Fpdf) *encoder {
	return &encoder{
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		lost: make(map[rune]struct{}),
	}
}

func (e *encoder) encode(text string) string {
	text = pdfFallbacks.Replace(text)
	out := e.tr(text)
	// the translator emits one byte per rune
	i := 0
	for _, r := range text {
		if r >= 0x80 && i < len(out) && out[i] == '.' {
			e.lost[r] = struct{}{}
		}
		i++
	}
	return out
}

// Lost returns the runes that were replaced with '.', in code point order.
func (e *encoder) Lost() []rune {
	out := make([]rune, 0, len(e.lost))
	for r := range e.lost {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func drawItem(pdf *gofpdf.Fpdf, it layout.Item) {
	switch it.Kind {
	case layout.ItemRule:
		pdf.SetLineWidth(0.5)
		pdf.Line(it.X, it.Y, it.X+it.W, it.Y)
	case layout.ItemBox:
		pdf.SetLineWidth(0.5)
		pdf.Rect(it.X, it.Y, it.W, it.H, "D")
	case layout.ItemText:
		setFont(pdf, it.Style)
		x := it.X
		if it.Align == layout.AlignCenter {
			x -= pdf.GetStringWidth(it.Text) / 2
		}
		pdf.Text(x, it.Y, it.Text)
	}
}

func setFont(pdf *gofpdf.Fpdf, style layout.Style) {
	spec, ok := pdfFonts[style]
	if !ok {
		spec = pdfFonts[layout.StyleQuestion]
	}
	pdf.SetFont(pdfFontFamily, spec.style, spec.size)
	pdf.SetTextColor(spec.rgb[0], spec.rgb[1], spec.rgb[2])
}

// pdfSplitter measures with the real font metrics. Text is already in the
// single-byte code page of the core fonts, so it is split byte-wise.
type pdfSplitter struct {
	pdf *gofpdf.Fpdf
}

func (s *pdfSplitter) SplitLines(text string, style layout.Style, width float64) []string {
	setFont(s.pdf, style)
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, s.wrap(para, width)...)
	}
	return lines
}

func (s *pdfSplitter) wrap(text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line := ""
	for _, word := range words {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if s.pdf.GetStringWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for s.pdf.GetStringWidth(word) > width && len(word) > 1 {
			cut := s.fit(word, width)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	return append(lines, line)
}

// fit returns how many leading bytes of word fit in width, at least one.
func (s *pdfSplitter) fit(word string, width float64) int {
	n := 1
	for n < len(word) && s.pdf.GetStringWidth(word[:n+1]) <= width {
		n++
	}
	return n
}

func translateDocument(doc *Document, tr func(string) string) *Document {
	out := *doc
	out.SchoolName = tr(doc.SchoolName)
	out.Address = tr(doc.Address)
	out.ExamType = tr(doc.ExamType)
	out.Title = tr(doc.Title)
	out.ExamRow = translateCells(doc.ExamRow, tr)
	out.PaperRow = translateCells(doc.PaperRow, tr)

	out.Instructions = make([]string, len(doc.Instructions))
	for i, l := range doc.Instructions {
		out.Instructions[i] = tr(l)
	}

	out.Sections = make([]SectionBlock, len(doc.Sections))
	for i, s := range doc.Sections {
		sb := SectionBlock{Heading: tr(s.Heading), Questions: make([]QuestionBlock, len(s.Questions))}
		for j, q := range s.Questions {
			qb := q
			qb.Text = tr(q.Text)
			qb.Answer = tr(q.Answer)
			qb.Marks = tr(q.Marks)
			qb.Options = make([]Option, len(q.Options))
			for k, o := range q.Options {
				qb.Options[k] = Option{Letter: o.Letter, Text: tr(o.Text), Correct: o.Correct}
			}
			sb.Questions[j] = qb
		}
		out.Sections[i] = sb
	}
	return &out
}

func translateCells(cells []Cell, tr func(string) string) []Cell {
	out := make([]Cell, len(cells))
	for i, c := range cells {
		out[i] = Cell{Label: tr(c.Label), Value: tr(c.Value)}
	}
	return out
}
