package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/stemsi/paperdesk/internal/normalize"
)

// QuestionKind distinguishes the two question variants.
type QuestionKind int

const (
	// KindOpenEnded covers fill-in-the-blank and written answers.
	KindOpenEnded QuestionKind = iota
	// KindMCQ is a multiple choice question with lettered options.
	KindMCQ
)

func (k QuestionKind) String() string {
	if k == KindMCQ {
		return "mcq"
	}
	return "open_ended"
}

// Question is a single paper question. The variant is fixed when the value
// is built or decoded; an MCQ always carries an options list (possibly empty
// when the service sent an unusable shape) and an open-ended question never
// does.
type Question struct {
	Kind    QuestionKind
	Text    string
	Options []string
	Answer  AnswerValue
	Marks   Marks
}

// NewMCQ builds a multiple choice question.
func NewMCQ(text string, options []string, answer AnswerValue, marks Marks) Question {
	if options == nil {
		options = []string{}
	}
	return Question{Kind: KindMCQ, Text: text, Options: options, Answer: answer, Marks: marks}
}

// NewOpenEnded builds a question without options.
func NewOpenEnded(text string, answer AnswerValue, marks Marks) Question {
	return Question{Kind: KindOpenEnded, Text: text, Answer: answer, Marks: marks}
}

// HasOptions reports whether the question is the MCQ variant.
func (q Question) HasOptions() bool {
	return q.Kind == KindMCQ
}

// Clone returns a copy that shares no slices with q.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]string{}, q.Options...)
	}
	out.Answer = q.Answer.Clone()
	return out
}

type questionWire struct {
	Question string          `json:"question"`
	Options  json.RawMessage `json:"options,omitempty"`
	Answer   AnswerValue     `json:"answer"`
	Marks    Marks           `json:"marks"`
}

// UnmarshalJSON picks the variant from the presence of an "options" key.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode question: %w", err)
	}

	if len(bytes.TrimSpace(w.Options)) > 0 {
		*q = NewMCQ(w.Question, normalize.NormalizeOptionsJSON(w.Options), w.Answer, w.Marks)
		return nil
	}
	*q = NewOpenEnded(w.Question, w.Answer, w.Marks)
	return nil
}

// MarshalJSON writes "options" only for the MCQ variant.
func (q Question) MarshalJSON() ([]byte, error) {
	w := questionWire{Question: q.Text, Answer: q.Answer, Marks: q.Marks}
	if q.Kind == KindMCQ {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		raw, err := json.Marshal(opts)
		if err != nil {
			return nil, err
		}
		w.Options = raw
	}
	return json.Marshal(w)
}
