package normalize

import (
	"encoding/json"
	"fmt"
)

// AnswerPlaceholder is shown when a structured answer has no recognised field.
const AnswerPlaceholder = "Answer provided (see details)"

// answerFields are probed in order; the first truthy one wins.
var answerFields = []string{
	"correct_option",
	"text",
	"answer",
	"content",
	"correct_word",
	"final_answer",
}

// CanonicalAnswerText returns the display text of an answer value. Structured
// answers that match no known shape collapse to AnswerPlaceholder.
func CanonicalAnswerText(v any) string {
	if text, ok := extractAnswerText(v); ok {
		return text
	}
	return AnswerPlaceholder
}

// CanonicalAnswerTextForExport is the variant used by printed and exported
// documents. Unrecognised structured answers are written out as raw JSON so
// nothing the service produced is lost on paper.
func CanonicalAnswerTextForExport(v any) string {
	if text, ok := extractAnswerText(v); ok {
		return text
	}
	b, err := json.Marshal(v)
	if err != nil {
		return Stringify(v)
	}
	return string(b)
}

// extractAnswerText reports false only for objects with no recognised shape.
func extractAnswerText(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if _, isList := v.([]any); isList {
		return "", false
	}
	obj, ok := asObject(v)
	if !ok {
		return Stringify(v), true
	}

	for _, field := range answerFields {
		if val, _ := obj.Get(field); Truthy(val) {
			return Stringify(val), true
		}
	}

	kind, _ := obj.Get("type")
	explanation, _ := obj.Get("explanation")
	if Truthy(kind) && Truthy(explanation) {
		return fmt.Sprintf("%s: %s...", Stringify(kind), truncate(Stringify(explanation), 100)), true
	}

	if def := definitionOf(obj); Truthy(def) {
		if s, ok := def.(string); ok {
			return s, true
		}
		if defObj, ok := asObject(def); ok {
			term, _ := defObj.Get("term")
			expl, _ := defObj.Get("explanation")
			if Truthy(term) && Truthy(expl) {
				return fmt.Sprintf("%s: %s...", Stringify(term), truncate(Stringify(expl), 80)), true
			}
		}
	}

	return "", false
}

func definitionOf(obj *Object) any {
	if def, _ := obj.Get("definition"); Truthy(def) {
		return def
	}
	if defs, ok := obj.Get("definitions"); ok {
		if list, ok := defs.([]any); ok && len(list) > 0 {
			return list[0]
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
