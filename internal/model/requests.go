package model

import "encoding/json"

// OutputType selects what the generation service should produce.
type OutputType string

const (
	OutputQuestionPaper OutputType = "question_paper"
	OutputAnswerKey     OutputType = "answer_key"
)

// QuestionDistribution is the requested count and per-question marks of each
// question type.
type QuestionDistribution struct {
	MCQCount          int `json:"mcq_count" binding:"min=0,max=100"`
	MCQMarks          int `json:"mcq_marks" binding:"min=0,max=100"`
	FillBlanksCount   int `json:"fill_blanks_count" binding:"min=0,max=100"`
	FillBlanksMarks   int `json:"fill_blanks_marks" binding:"min=0,max=100"`
	ShortAnswerCount  int `json:"short_answer_count" binding:"min=0,max=100"`
	ShortAnswerMarks  int `json:"short_answer_marks" binding:"min=0,max=100"`
	MediumAnswerCount int `json:"medium_answer_count" binding:"min=0,max=100"`
	MediumAnswerMarks int `json:"medium_answer_marks" binding:"min=0,max=100"`
	LongAnswerCount   int `json:"long_answer_count" binding:"min=0,max=100"`
	LongAnswerMarks   int `json:"long_answer_marks" binding:"min=0,max=100"`
}

// Total is the sum of count × marks over every question type.
func (d QuestionDistribution) Total() int {
	return d.MCQCount*d.MCQMarks +
		d.FillBlanksCount*d.FillBlanksMarks +
		d.ShortAnswerCount*d.ShortAnswerMarks +
		d.MediumAnswerCount*d.MediumAnswerMarks +
		d.LongAnswerCount*d.LongAnswerMarks
}

// GenerationRequest is the payload for generating a paper.
type GenerationRequest struct {
	Board                Board                `json:"board" binding:"required,oneof=CBSE ICSE SSC"`
	ClassLevel           string               `json:"class_level" binding:"required,max=20"`
	Subject              string               `json:"subject" binding:"required,max=100"`
	Chapters             []string             `json:"chapters" binding:"required,min=1,max=10,dive,required,max=200"`
	TotalMarks           int                  `json:"total_marks" binding:"required,min=1,max=200"`
	DifficultyPercentage int                  `json:"difficulty_percentage" binding:"required,min=10,max=100"`
	Distribution         QuestionDistribution `json:"distribution"`
	OutputType           OutputType           `json:"output_type" binding:"omitempty,oneof=question_paper answer_key"`
}

// ReplaceQuestionRequest asks the service for a new question at a position.
type ReplaceQuestionRequest struct {
	PaperID       string `json:"paper_id"`
	SectionIndex  int    `json:"section_index"`
	QuestionIndex int    `json:"question_index"`
	QuestionText  string `json:"question_text"`
}

// ReplaceQuestionResult is the service's answer to a replacement request.
type ReplaceQuestionResult struct {
	Success     bool      `json:"success"`
	NewQuestion *Question `json:"new_question"`
	Message     string    `json:"message"`
}

// EditQuestionRequest overwrites a question locally. Marks are never edited.
type EditQuestionRequest struct {
	Question string          `json:"question" binding:"required,max=4000"`
	Options  []string        `json:"options" binding:"omitempty,max=6,dive,max=1000"`
	Answer   json.RawMessage `json:"answer"`
}

// QuestionRef addresses one question inside a paper.
type QuestionRef struct {
	SectionIndex  int `json:"section_index" binding:"min=0"`
	QuestionIndex int `json:"question_index" binding:"min=0"`
}

// ReplaceFailure records one question that could not be replaced.
type ReplaceFailure struct {
	QuestionRef
	Message string `json:"message"`
}

// ReplaceSelectedResult summarises a bulk replacement.
type ReplaceSelectedResult struct {
	Replaced []QuestionRef   `json:"replaced"`
	Failed   []ReplaceFailure `json:"failed"`
}

// PrintRequest carries the optional header overrides for a print or export.
type PrintRequest struct {
	School      *SchoolDetails `json:"school"`
	IsAnswerKey bool           `json:"is_answer_key"`
}

// FormState is the last generation form a school filled in.
type FormState struct {
	Board                Board                `json:"board"`
	ClassLevel           string               `json:"class_level"`
	Subject              string               `json:"subject"`
	Chapters             []string             `json:"chapters"`
	TotalMarks           int                  `json:"total_marks"`
	DifficultyPercentage int                  `json:"difficulty_percentage"`
	Distribution         QuestionDistribution `json:"distribution"`
}
