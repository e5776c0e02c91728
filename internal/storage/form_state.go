package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
)

// FormStateStore keeps the last generation form between visits.
type FormStateStore struct {
	blobs BlobStore
	log   zerolog.Logger
}

// NewFormStateStore creates a FormStateStore backed by blobs.
func NewFormStateStore(blobs BlobStore, log zerolog.Logger) *FormStateStore {
	return &FormStateStore{
		blobs: blobs,
		log:   log.With().Str("component", "form_state").Logger(),
	}
}

// Save stores state. Failures are logged only.
func (s *FormStateStore) Save(ctx context.Context, state *model.FormState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode form state")
		return
	}
	if err := s.blobs.Set(ctx, config.CacheKey.FormStateKey(), data, 0); err != nil {
		s.log.Error().Err(err).Msg("Failed to save form state")
	}
}

// Load returns the stored form or nil. A corrupt blob is deleted.
func (s *FormStateStore) Load(ctx context.Context) *model.FormState {
	data, err := s.blobs.Get(ctx, config.CacheKey.FormStateKey())
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.log.Error().Err(err).Msg("Failed to read form state")
		}
		return nil
	}

	var state model.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warn().Err(err).Msg("Discarding corrupt form state")
		s.Clear(ctx)
		return nil
	}
	return &state
}

// Clear removes the stored form.
func (s *FormStateStore) Clear(ctx context.Context) {
	if err := s.blobs.Delete(ctx, config.CacheKey.FormStateKey()); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear form state")
	}
}
