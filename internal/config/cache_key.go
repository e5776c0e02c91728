package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// PapersKey returns the key of the Papers table blob
func (r *CacheKeyStruct) PapersKey() string {
	return "question_papers"
}

// AnswerKeysKey returns the key of the AnswerKeys table blob
func (r *CacheKeyStruct) AnswerKeysKey() string {
	return "answer_keys"
}

// FormStateKey returns the key of the last generation form
func (r *CacheKeyStruct) FormStateKey() string {
	return "paperGeneratorFormState"
}

// SessionKey returns the key of a login session's school data
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

var CacheKey = NewCacheKeyStruct()
