package service

import (
	"context"

	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/storage"
)

// FormStateService remembers the last generation form between visits.
type FormStateService struct {
	store *storage.FormStateStore
}

// NewFormStateService creates a new FormStateService.
func NewFormStateService(store *storage.FormStateStore) *FormStateService {
	return &FormStateService{store: store}
}

// Save remembers state.
func (s *FormStateService) Save(ctx context.Context, state *model.FormState) {
	s.store.Save(ctx, state)
}

// Load returns the remembered form, or nil. The board always follows the
// logged-in school's board when the school has one.
func (s *FormStateService) Load(ctx context.Context, school *model.SchoolData) *model.FormState {
	state := s.store.Load(ctx)
	if state == nil {
		return nil
	}
	if school != nil && school.Board != "" {
		state.Board = model.Board(school.Board)
	}
	return state
}

// Clear forgets the remembered form.
func (s *FormStateService) Clear(ctx context.Context) {
	s.store.Clear(ctx)
}
