package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrQuestionOutOfRange is returned when a section/question index pair does
// not address a question in the paper.
var ErrQuestionOutOfRange = errors.New("question index out of range")

// Board is the examination board a paper is generated for.
type Board string

const (
	BoardCBSE Board = "CBSE"
	BoardICSE Board = "ICSE"
	BoardSSC  Board = "SSC"
)

// Boards lists the supported boards in display order.
var Boards = []Board{BoardCBSE, BoardICSE, BoardSSC}

// Marks is a mark count. The generation service is not consistent about
// sending numbers, so quoted numeric strings are accepted too.
type Marks float64

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Marks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("marks %q: %w", s, err)
		}
		*m = Marks(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Marks(f)
	return nil
}

// String formats the value without trailing zeros: 5, 2.5, 0.
func (m Marks) String() string {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PaperMetadata describes how a paper was generated.
type PaperMetadata struct {
	Board       Board    `json:"board"`
	ClassLevel  string   `json:"class_level"`
	Subject     string   `json:"subject"`
	Chapters    []string `json:"chapters"`
	Difficulty  string   `json:"difficulty"`
	Marks       Marks    `json:"marks"`
	GeneratedAt string   `json:"generated_at"`
}

// Section is an ordered group of questions of one type.
type Section struct {
	Type       string     `json:"type"`
	Questions  []Question `json:"questions"`
	TotalMarks Marks      `json:"total_marks"`
}

// MarksPerQuestion divides the section total evenly, rounded to one decimal.
// An empty section reports 0.
func (s Section) MarksPerQuestion() Marks {
	if len(s.Questions) == 0 {
		return 0
	}
	per := float64(s.TotalMarks) / float64(len(s.Questions))
	return Marks(math.Round(per*10) / 10)
}

// Paper is a generated question paper as returned by the generation service.
type Paper struct {
	ID       string        `json:"paper_id"`
	Metadata PaperMetadata `json:"metadata"`
	Sections []Section     `json:"sections"`
}

// Question returns the question at the given section and question index.
func (p *Paper) Question(section, question int) (*Question, error) {
	if section < 0 || section >= len(p.Sections) {
		return nil, fmt.Errorf("%w: section %d", ErrQuestionOutOfRange, section)
	}
	qs := p.Sections[section].Questions
	if question < 0 || question >= len(qs) {
		return nil, fmt.Errorf("%w: section %d question %d", ErrQuestionOutOfRange, section, question)
	}
	return &qs[question], nil
}

// Clone returns a deep copy so a working copy can be mutated without
// touching the cached value.
func (p *Paper) Clone() *Paper {
	if p == nil {
		return nil
	}
	out := &Paper{ID: p.ID, Metadata: p.Metadata}
	out.Metadata.Chapters = append([]string(nil), p.Metadata.Chapters...)
	out.Sections = make([]Section, len(p.Sections))
	for i, s := range p.Sections {
		out.Sections[i] = Section{Type: s.Type, TotalMarks: s.TotalMarks}
		out.Sections[i].Questions = make([]Question, len(s.Questions))
		for j, q := range s.Questions {
			out.Sections[i].Questions[j] = q.Clone()
		}
	}
	return out
}

// AnswerKey has the same shape as a Paper; its questions carry full answers.
type AnswerKey struct {
	Paper
}

// PaperTitle derives the display title stored alongside a cached paper.
func PaperTitle(meta PaperMetadata) string {
	return fmt.Sprintf("%s Class %s %s - %s marks (%s)",
		meta.Board, meta.ClassLevel, meta.Subject, meta.Marks, meta.Difficulty)
}

// SavedPaper is one row of the Papers table.
type SavedPaper struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Metadata  PaperMetadata `json:"metadata"`
	Sections  []Section     `json:"sections"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Paper converts the row back into the generation-service shape.
func (sp *SavedPaper) Paper() *Paper {
	p := &Paper{ID: sp.ID, Metadata: sp.Metadata, Sections: sp.Sections}
	return p.Clone()
}

// AnswerKeyRecord is one row of the AnswerKeys table.
type AnswerKeyRecord struct {
	PaperID   string    `json:"paperId"`
	AnswerKey AnswerKey `json:"answerKey"`
	CreatedAt time.Time `json:"created_at"`
}

// StorageInfo summarises the Papers table.
type StorageInfo struct {
	Count int    `json:"count"`
	Size  string `json:"size"`
}
