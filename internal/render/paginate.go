package render

import (
	"github.com/stemsi/paperdesk/internal/layout"
)

// Paginate places every fragment of doc on pages of geom. Each fragment's
// height is measured with split before it is placed, so nothing is drawn
// below the bottom margin unless a single fragment is taller than a page.
func Paginate(doc *Document, geom layout.Geometry, split layout.Splitter) *layout.Plan {
	p := &paginator{
		doc:    doc,
		geom:   geom,
		split:  split,
		cursor: layout.NewCursor(geom),
	}
	p.header()
	p.instructions()
	p.title()
	for _, s := range doc.Sections {
		p.section(s)
	}
	return &layout.Plan{Geometry: geom, Pages: p.cursor.Page(), Items: p.items}
}

type paginator struct {
	doc    *Document
	geom   layout.Geometry
	split  layout.Splitter
	cursor *layout.Cursor
	items  []layout.Item
}

func (p *paginator) text(x float64, text string, style layout.Style, align layout.Align) {
	p.items = append(p.items, layout.Item{
		Kind:  layout.ItemText,
		Page:  p.cursor.Page(),
		X:     x,
		Y:     p.cursor.Y(),
		Text:  text,
		Style: style,
		Align: align,
	})
}

func (p *paginator) centered(text string, style layout.Style, advance float64) {
	p.text(p.geom.PageWidth/2, text, style, layout.AlignCenter)
	p.cursor.Advance(advance)
}

func (p *paginator) rule() {
	p.items = append(p.items, layout.Item{
		Kind: layout.ItemRule,
		Page: p.cursor.Page(),
		X:    p.geom.Margin,
		Y:    p.cursor.Y(),
		W:    p.geom.ContentWidth(),
	})
	p.cursor.Advance(layout.RuleAdvance)
}

// header and instructions are kept together on one page when they fit.
func (p *paginator) header() {
	block := layout.HeaderHeight() + layout.InstructionsHeight(len(p.doc.Instructions))
	if block <= p.geom.UsableHeight() {
		p.cursor.Ensure(block)
	}

	p.centered(p.doc.SchoolName, layout.StyleSchoolName, layout.SchoolNameAdvance)
	p.centered(p.doc.Address, layout.StyleAddress, layout.AddressAdvance)
	p.centered(p.doc.ExamType, layout.StyleExamType, layout.ExamTypeAdvance)

	p.row(p.doc.ExamRow)
	p.row(p.doc.PaperRow)
	p.rule()
}

func (p *paginator) row(cells []Cell) {
	if len(cells) == 0 {
		p.cursor.Advance(layout.DetailsAdvance)
		return
	}
	step := p.geom.ContentWidth() / float64(len(cells))
	for i, c := range cells {
		p.text(p.geom.Margin+float64(i)*step, c.Text(), layout.StyleDetails, layout.AlignLeft)
	}
	p.cursor.Advance(layout.DetailsAdvance)
}

func (p *paginator) instructions() {
	n := len(p.doc.Instructions)
	boxH := layout.InstructionsBoxHeight(n)
	boxX := (p.geom.PageWidth - layout.InstructionsBoxWidth) / 2
	pad := layout.InstructionsBoxPadding

	if boxH <= p.geom.UsableHeight() {
		p.cursor.Ensure(boxH)
		top := p.cursor.Y()
		p.items = append(p.items, layout.Item{
			Kind: layout.ItemBox,
			Page: p.cursor.Page(),
			X:    boxX,
			Y:    top,
			W:    layout.InstructionsBoxWidth,
			H:    boxH,
		})
		p.cursor.Advance(pad + 2)
		p.text(boxX+pad, InstructionsTitle, layout.StyleInstructionsTitle, layout.AlignLeft)
		p.cursor.Advance(layout.LineHeight)
		for _, line := range p.doc.Instructions {
			p.text(boxX+pad, line, layout.StyleInstruction, layout.AlignLeft)
			p.cursor.Advance(layout.LineHeight)
		}
		p.cursor.Advance(top + boxH - p.cursor.Y())
	} else {
		// Too long to frame on one page: flow the lines unboxed.
		p.cursor.Ensure(layout.LineHeight)
		p.text(p.geom.Margin, InstructionsTitle, layout.StyleInstructionsTitle, layout.AlignLeft)
		p.cursor.Advance(layout.LineHeight)
		for _, line := range p.doc.Instructions {
			p.cursor.Ensure(layout.LineHeight)
			p.text(p.geom.Margin, line, layout.StyleInstruction, layout.AlignLeft)
			p.cursor.Advance(layout.LineHeight)
		}
	}
	p.cursor.Advance(layout.InstructionsGap)

	p.cursor.Ensure(layout.LineHeight)
	p.rule()
}

func (p *paginator) title() {
	p.cursor.Ensure(layout.TitleHeight)
	p.text(p.geom.Margin, p.doc.Title, layout.StyleTitle, layout.AlignLeft)
	p.cursor.Advance(layout.TitleAdvance)
}

func (p *paginator) section(s SectionBlock) {
	p.cursor.Ensure(layout.SectionHeadingHeight)
	p.text(p.geom.Margin, s.Heading, layout.StyleSection, layout.AlignLeft)
	p.cursor.Advance(layout.SectionHeadingAdvance)

	for _, q := range s.Questions {
		p.question(q)
	}
	p.cursor.Advance(layout.SectionGap)
}

func (p *paginator) question(q QuestionBlock) {
	width := p.geom.ContentWidth()

	lines := p.split.SplitLines(q.Label(), layout.StyleQuestion, width-2*layout.QuestionInset)
	p.cursor.Ensure(layout.QuestionHeight(len(lines)))
	p.lines(p.geom.Margin+layout.QuestionInset, lines, layout.StyleQuestion, layout.LineHeight)

	for _, opt := range q.Options {
		style := layout.StyleOption
		if opt.Correct {
			style = layout.StyleOptionCorrect
		}
		optLines := p.split.SplitLines(opt.Label(), style, width-layout.OptionInset)
		p.cursor.Ensure(layout.OptionHeight(len(optLines)))
		p.lines(p.geom.Margin+layout.OptionInset, optLines, style, layout.OptionLineHeight)
	}

	if q.Answer != "" {
		ansLines := p.split.SplitLines("Answer: "+q.Answer, layout.StyleAnswer, width-2*layout.AnswerInset)
		p.cursor.Ensure(layout.AnswerHeight(len(ansLines)))
		p.lines(p.geom.Margin+layout.AnswerInset, ansLines, layout.StyleAnswer, layout.LineHeight)
		p.cursor.Advance(layout.AnswerGap)
		p.cursor.Ensure(layout.LineHeight)
		p.text(p.geom.Margin+layout.AnswerInset, "Marks: "+q.Marks, layout.StyleMarks, layout.AlignLeft)
		p.cursor.Advance(layout.MarksAdvance)
	}

	p.cursor.Advance(layout.QuestionGap)
}

// lines places pre-split lines one below the other. A block taller than a
// page continues on the next one.
func (p *paginator) lines(x float64, lines []string, style layout.Style, lineHeight float64) {
	for _, l := range lines {
		p.cursor.Ensure(lineHeight)
		p.text(x, l, style, layout.AlignLeft)
		p.cursor.Advance(lineHeight)
	}
}
