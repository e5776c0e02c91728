package model

import (
	"bytes"
	"encoding/json"

	"github.com/stemsi/paperdesk/internal/normalize"
)

// AnswerValue holds a question's answer exactly as the service sent it: a
// plain string or a structured object. The raw JSON is kept so that saving a
// paper never rewrites what was generated.
type AnswerValue struct {
	raw   json.RawMessage
	value any
}

// TextAnswer wraps a plain string answer.
func TextAnswer(s string) AnswerValue {
	raw, _ := json.Marshal(s)
	return AnswerValue{raw: raw, value: s}
}

// AnswerFromJSON decodes a raw JSON answer. Invalid JSON is kept as a string.
func AnswerFromJSON(raw []byte) AnswerValue {
	var a AnswerValue
	if err := a.UnmarshalJSON(raw); err != nil {
		return TextAnswer(string(raw))
	}
	return a
}

// Value returns the decoded value for use with the normalize package.
func (a AnswerValue) Value() any {
	return a.value
}

// IsEmpty reports whether there is no answer to show.
func (a AnswerValue) IsEmpty() bool {
	return !normalize.Truthy(a.value)
}

// Text is the display text with the placeholder fallback.
func (a AnswerValue) Text() string {
	return normalize.CanonicalAnswerText(a.value)
}

// ExportText is the display text used in printed documents.
func (a AnswerValue) ExportText() string {
	return normalize.CanonicalAnswerTextForExport(a.value)
}

// Clone copies the raw bytes; the decoded value is rebuilt from them.
func (a AnswerValue) Clone() AnswerValue {
	if len(a.raw) == 0 {
		return AnswerValue{}
	}
	return AnswerFromJSON(append([]byte(nil), a.raw...))
}

// UnmarshalJSON keeps the raw bytes and an order-preserving decoded copy.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = AnswerValue{}
		return nil
	}
	v, err := normalize.Decode(data)
	if err != nil {
		return err
	}
	*a = AnswerValue{raw: append(json.RawMessage(nil), data...), value: v}
	return nil
}

// MarshalJSON writes the original bytes back.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}
