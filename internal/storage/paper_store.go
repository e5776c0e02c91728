package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
)

// PaperStore owns the Papers and AnswerKeys tables.
//
// Reads never fail: a missing, unreadable or corrupt table is an empty one.
// Writes that fail are logged and dropped, leaving the last good blob in
// place. Read-modify-write sequences hold mu so concurrent upserts cannot
// lose each other's rows.
type PaperStore struct {
	mu    sync.Mutex
	blobs BlobStore
	log   zerolog.Logger
	now   func() time.Time
}

// NewPaperStore creates a PaperStore backed by blobs.
func NewPaperStore(blobs BlobStore, log zerolog.Logger) *PaperStore {
	return &PaperStore{
		blobs: blobs,
		log:   log.With().Str("component", "paper_store").Logger(),
		now:   time.Now,
	}
}

// SavePaper inserts or replaces the paper with the same id and re-sorts the
// table newest first. An existing row keeps its created_at.
func (s *PaperStore) SavePaper(ctx context.Context, paper *model.Paper) *model.SavedPaper {
	s.mu.Lock()
	defer s.mu.Unlock()

	papers := s.readPapers(ctx)
	now := s.now().UTC()

	saved := model.SavedPaper{
		ID:        paper.ID,
		Title:     model.PaperTitle(paper.Metadata),
		Metadata:  paper.Metadata,
		Sections:  paper.Sections,
		CreatedAt: now,
		UpdatedAt: now,
	}

	found := false
	for i := range papers {
		if papers[i].ID == paper.ID {
			saved.CreatedAt = papers[i].CreatedAt
			papers[i] = saved
			found = true
			break
		}
	}
	if !found {
		papers = append(papers, saved)
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CreatedAt.After(papers[j].CreatedAt)
	})

	if err := s.writeJSON(ctx, config.CacheKey.PapersKey(), papers); err != nil {
		s.log.Error().Err(err).Str("paper_id", paper.ID).Msg("Failed to save paper")
		return nil
	}

	s.log.Debug().Str("paper_id", paper.ID).Str("title", saved.Title).Msg("Paper saved")
	return &saved
}

// GetAllPapers returns the table in stored order.
func (s *PaperStore) GetAllPapers(ctx context.Context) []model.SavedPaper {
	return s.readPapers(ctx)
}

// GetPaperByID returns the cached paper or nil.
func (s *PaperStore) GetPaperByID(ctx context.Context, id string) *model.SavedPaper {
	for _, p := range s.readPapers(ctx) {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

// DeletePaper removes the paper with id and reports whether a row was
// removed. Cached answer keys are left alone.
func (s *PaperStore) DeletePaper(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	papers := s.readPapers(ctx)
	kept := papers[:0:0]
	for _, p := range papers {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(papers) {
		return false
	}

	if err := s.writeJSON(ctx, config.CacheKey.PapersKey(), kept); err != nil {
		s.log.Error().Err(err).Str("paper_id", id).Msg("Failed to delete paper")
		return false
	}
	s.log.Debug().Str("paper_id", id).Msg("Paper deleted")
	return true
}

// ClearAllPapers drops the whole Papers table.
func (s *PaperStore) ClearAllPapers(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, config.CacheKey.PapersKey()); err != nil {
		s.log.Error().Err(err).Msg("Failed to clear papers")
		return
	}
	s.log.Info().Msg("All papers cleared")
}

// StorageInfo reports the paper count and the serialized table size.
func (s *PaperStore) StorageInfo(ctx context.Context) model.StorageInfo {
	data, err := s.blobs.Get(ctx, config.CacheKey.PapersKey())
	if err != nil && !errors.Is(err, ErrBlobNotFound) {
		s.log.Error().Err(err).Msg("Failed to read storage info")
		return model.StorageInfo{Count: 0, Size: "0 KB"}
	}
	return model.StorageInfo{
		Count: len(s.decodePapers(data)),
		Size:  fmt.Sprintf("%.2f KB", float64(len(data))/1024),
	}
}

// ExportPapers returns the Papers table as indented JSON.
func (s *PaperStore) ExportPapers(ctx context.Context) []byte {
	papers := s.readPapers(ctx)
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to export papers")
		return []byte("[]")
	}
	return data
}

// ImportPapers merges a JSON array of saved papers into the table. Rows whose
// id already exists, or repeats within the import, are skipped so the first
// occurrence wins. Returns false when data is not a JSON array of papers or
// the merged table could not be written.
func (s *PaperStore) ImportPapers(ctx context.Context, data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		s.log.Warn().Msg("Import rejected: not a JSON array")
		return false
	}
	var imported []model.SavedPaper
	if err := json.Unmarshal(trimmed, &imported); err != nil {
		s.log.Warn().Err(err).Msg("Import rejected: invalid papers")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.readPapers(ctx)
	seen := make(map[string]bool, len(merged)+len(imported))
	for _, p := range merged {
		seen[p.ID] = true
	}
	added := 0
	for _, p := range imported {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.Title == "" {
			p.Title = model.PaperTitle(p.Metadata)
		}
		merged = append(merged, p)
		added++
	}

	if err := s.writeJSON(ctx, config.CacheKey.PapersKey(), merged); err != nil {
		s.log.Error().Err(err).Msg("Failed to import papers")
		return false
	}
	s.log.Info().Int("imported", added).Int("total", len(merged)).Msg("Papers imported")
	return true
}

// SaveAnswerKey inserts or replaces the answer key cached for paperID.
func (s *PaperStore) SaveAnswerKey(ctx context.Context, paperID string, key *model.AnswerKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.readAnswerKeys(ctx)
	rec := model.AnswerKeyRecord{PaperID: paperID, AnswerKey: *key, CreatedAt: s.now().UTC()}

	found := false
	for i := range keys {
		if keys[i].PaperID == paperID {
			keys[i] = rec
			found = true
			break
		}
	}
	if !found {
		keys = append(keys, rec)
	}

	if err := s.writeJSON(ctx, config.CacheKey.AnswerKeysKey(), keys); err != nil {
		s.log.Error().Err(err).Str("paper_id", paperID).Msg("Failed to save answer key")
		return
	}
	s.log.Debug().Str("paper_id", paperID).Msg("Answer key saved")
}

// GetAnswerKey returns the cached answer key for paperID or nil.
func (s *PaperStore) GetAnswerKey(ctx context.Context, paperID string) *model.AnswerKey {
	for _, rec := range s.readAnswerKeys(ctx) {
		if rec.PaperID == paperID {
			key := rec.AnswerKey
			return &key
		}
	}
	return nil
}

// DeleteAnswerKey removes the answer key cached for paperID and reports
// whether one was removed.
func (s *PaperStore) DeleteAnswerKey(ctx context.Context, paperID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := s.readAnswerKeys(ctx)
	kept := keys[:0:0]
	for _, rec := range keys {
		if rec.PaperID != paperID {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(keys) {
		return false
	}

	if err := s.writeJSON(ctx, config.CacheKey.AnswerKeysKey(), kept); err != nil {
		s.log.Error().Err(err).Str("paper_id", paperID).Msg("Failed to delete answer key")
		return false
	}
	s.log.Debug().Str("paper_id", paperID).Msg("Answer key deleted")
	return true
}

func (s *PaperStore) readPapers(ctx context.Context) []model.SavedPaper {
	data, err := s.blobs.Get(ctx, config.CacheKey.PapersKey())
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.log.Error().Err(err).Msg("Failed to read papers")
		}
		return []model.SavedPaper{}
	}
	return s.decodePapers(data)
}

func (s *PaperStore) decodePapers(data []byte) []model.SavedPaper {
	if len(data) == 0 {
		return []model.SavedPaper{}
	}
	var papers []model.SavedPaper
	if err := json.Unmarshal(data, &papers); err != nil {
		s.log.Error().Err(err).Msg("Papers table is corrupt, treating as empty")
		return []model.SavedPaper{}
	}
	if papers == nil {
		papers = []model.SavedPaper{}
	}
	return papers
}

func (s *PaperStore) readAnswerKeys(ctx context.Context) []model.AnswerKeyRecord {
	data, err := s.blobs.Get(ctx, config.CacheKey.AnswerKeysKey())
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.log.Error().Err(err).Msg("Failed to read answer keys")
		}
		return []model.AnswerKeyRecord{}
	}
	var keys []model.AnswerKeyRecord
	if err := json.Unmarshal(data, &keys); err != nil {
		s.log.Error().Err(err).Msg("Answer keys table is corrupt, treating as empty")
		return []model.AnswerKeyRecord{}
	}
	if keys == nil {
		keys = []model.AnswerKeyRecord{}
	}
	return keys
}

func (s *PaperStore) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.blobs.Set(ctx, key, data, 0)
}
