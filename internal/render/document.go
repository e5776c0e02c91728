// Package render turns a paper and its print settings into printable
// documents. Every backend consumes the same Document, so the browser print
// view, the PDF and the terminal preview always show the same content in the
// same order.
package render

import (
	"context"
	"fmt"
	"io"

	"github.com/stemsi/paperdesk/internal/model"
)

// Cell is one labelled value in a header details row.
type Cell struct {
	Label string
	Value string
}

// Text joins the label and value the way every backend prints them.
func (c Cell) Text() string {
	return c.Label + " " + c.Value
}

// Option is one lettered choice of an MCQ.
type Option struct {
	Letter  string
	Text    string
	Correct bool
}

// Label is the printed option line, e.g. "A. Ampere".
func (o Option) Label() string {
	return o.Letter + ". " + o.Text
}

// QuestionBlock is one numbered question and, for answer keys, its answer.
type QuestionBlock struct {
	Number  int
	Text    string
	Options []Option
	// Answer is empty when the question has no answer to show.
	Answer string
	Marks  string
}

// Label is the printed question line, e.g. "Q1. What is ...".
func (q QuestionBlock) Label() string {
	return fmt.Sprintf("Q%d. %s", q.Number, q.Text)
}

// SectionBlock is a section heading and its questions.
type SectionBlock struct {
	Heading   string
	Questions []QuestionBlock
}

// Document is the backend-independent content of a printed paper in
// traversal order: header, divider, instructions, divider, title, sections.
type Document struct {
	SchoolName   string
	Address      string
	ExamType     string
	ExamRow      []Cell
	PaperRow     []Cell
	Instructions []string
	Title        string
	Sections     []SectionBlock
	IsAnswerKey  bool
}

// InstructionsTitle heads the instructions block.
const InstructionsTitle = "General Instructions:"

// Title returns the heading printed above the first section.
func Title(isAnswerKey bool) string {
	if isAnswerKey {
		return "ANSWERS"
	}
	return "QUESTIONS"
}

// SectionHeading formats the heading of the n-th (1-based) section.
func SectionHeading(n int, s model.Section, isAnswerKey bool) string {
	suffix := ""
	if isAnswerKey {
		suffix = " Answers"
	}
	return fmt.Sprintf("Section %d: %s%s (%d × %s = %s marks)",
		n, s.Type, suffix, len(s.Questions), s.MarksPerQuestion(), s.TotalMarks)
}

// OptionLetter maps 0, 1, 2… to "A", "B", "C"…. Past "Z" it continues
// spreadsheet style with "AA", "AB"….
func OptionLetter(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return OptionLetter(i/26-1) + OptionLetter(i%26)
}

// BuildDocument walks paper in print order. Answers are only included when
// isAnswerKey is set; the correct option is flagged but never altered.
func BuildDocument(paper *model.Paper, school model.SchoolDetails, isAnswerKey bool) *Document {
	meta := paper.Metadata
	doc := &Document{
		SchoolName: school.SchoolName,
		Address:    school.Address,
		ExamType:   school.ExamType,
		ExamRow: []Cell{
			{Label: "Academic Year:", Value: school.AcademicYear},
			{Label: "Date:", Value: school.Date},
			{Label: "Time:", Value: school.Duration},
		},
		PaperRow: []Cell{
			{Label: "Subject:", Value: meta.Subject},
			{Label: "Class:", Value: meta.ClassLevel},
			{Label: "Board:", Value: string(meta.Board)},
			{Label: "Total Marks:", Value: meta.Marks.String()},
		},
		Instructions: school.InstructionLines(),
		Title:        Title(isAnswerKey),
		IsAnswerKey:  isAnswerKey,
	}

	for si, section := range paper.Sections {
		block := SectionBlock{Heading: SectionHeading(si+1, section, isAnswerKey)}
		for qi, q := range section.Questions {
			block.Questions = append(block.Questions, buildQuestion(qi+1, q, isAnswerKey))
		}
		doc.Sections = append(doc.Sections, block)
	}
	return doc
}

func buildQuestion(n int, q model.Question, isAnswerKey bool) QuestionBlock {
	qb := QuestionBlock{Number: n, Text: q.Text, Marks: q.Marks.String()}

	showAnswer := isAnswerKey && !q.Answer.IsEmpty()
	if showAnswer {
		qb.Answer = q.Answer.ExportText()
	}

	if q.HasOptions() {
		for i, opt := range q.Options {
			qb.Options = append(qb.Options, Option{
				Letter:  OptionLetter(i),
				Text:    opt,
				Correct: showAnswer && opt == qb.Answer,
			})
		}
	}
	return qb
}

// PaperFilename is the download name of a question paper PDF.
func PaperFilename(school model.SchoolDetails, meta model.PaperMetadata) string {
	return fmt.Sprintf("%s_%s_Class%s.pdf", school.ExamType, meta.Subject, meta.ClassLevel)
}

// AnswerKeyFilename is the download name of an answer key PDF.
func AnswerKeyFilename(paperID string) string {
	return fmt.Sprintf("answer-key-%s.pdf", paperID)
}

// Renderer is a document backend.
type Renderer interface {
	ContentType() string
	Render(ctx context.Context, doc *Document, w io.Writer) error
}
