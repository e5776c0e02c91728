package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/storage"
)

// Paper errors.
var (
	ErrPaperNotFound      = errors.New("paper not found")
	ErrReplaceRejected    = errors.New("question replacement rejected")
	ErrEmptyQuestionText  = errors.New("question has no text to replace")
	ErrPaperNotSaved      = errors.New("paper could not be saved")
	ErrNothingSelected    = errors.New("no questions selected")
	ErrInvalidImportInput = errors.New("import data must be a JSON array of papers")
)

// Generator is the remote paper generation service.
type Generator interface {
	GeneratePaper(ctx context.Context, req *model.GenerationRequest) (*model.Paper, error)
	GenerateAnswerKey(ctx context.Context, paperID string) (*model.AnswerKey, error)
	ReplaceQuestion(ctx context.Context, req model.ReplaceQuestionRequest) (*model.ReplaceQuestionResult, error)
	GetPaper(ctx context.Context, paperID string) (*model.Paper, error)
}

// PaperService resolves papers and answer keys cache-first and owns the
// in-memory working copy of every opened paper. Edits and replacements
// mutate the working copy and always invalidate the cached answer key of the
// paper in the same step; the working copy is written back to the cache only
// by SaveWorkingCopy.
type PaperService struct {
	store *storage.PaperStore
	gen   Generator
	log   zerolog.Logger

	mu         sync.Mutex
	working    map[string]*model.Paper
	selections map[string][]model.QuestionRef
	locks      map[string]*sync.Mutex
}

// NewPaperService creates a new PaperService.
func NewPaperService(store *storage.PaperStore, gen Generator, log zerolog.Logger) *PaperService {
	return &PaperService{
		store:      store,
		gen:        gen,
		log:        log.With().Str("component", "paper_service").Logger(),
		working:    make(map[string]*model.Paper),
		selections: make(map[string][]model.QuestionRef),
		locks:      make(map[string]*sync.Mutex),
	}
}

// lock serializes mutations of one paper id.
func (s *PaperService) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// GeneratePaper asks the generation service for a new paper and caches it
// immediately. The returned paper becomes the working copy.
func (s *PaperService) GeneratePaper(ctx context.Context, req *model.GenerationRequest) (*model.Paper, error) {
	req.OutputType = model.OutputQuestionPaper

	paper, err := s.gen.GeneratePaper(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.store.SavePaper(ctx, paper) == nil {
		s.log.Warn().Str("paper_id", paper.ID).Msg("Generated paper was not cached")
	}

	s.mu.Lock()
	s.working[paper.ID] = paper.Clone()
	delete(s.selections, paper.ID)
	s.mu.Unlock()

	s.log.Info().
		Str("paper_id", paper.ID).
		Str("subject", paper.Metadata.Subject).
		Int("sections", len(paper.Sections)).
		Msg("Paper generated")
	return paper, nil
}

// ResolvePaper returns the cached paper, falling back to the generation
// service on a miss. Papers fetched through the fallback are not cached.
func (s *PaperService) ResolvePaper(ctx context.Context, id string) (*model.Paper, error) {
	if saved := s.store.GetPaperByID(ctx, id); saved != nil {
		return saved.Paper(), nil
	}

	s.log.Debug().Str("paper_id", id).Msg("Paper not cached, fetching from generator")
	paper, err := s.gen.GetPaper(ctx, id)
	if err != nil {
		var apiErr *remote.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrPaperNotFound, id)
		}
		return nil, err
	}
	if paper.ID == "" {
		paper.ID = id
	}
	return paper, nil
}

// OpenPaper returns a copy of the working copy of id, loading it with
// ResolvePaper on first use.
func (s *PaperService) OpenPaper(ctx context.Context, id string) (*model.Paper, error) {
	unlock := s.lock(id)
	defer unlock()

	paper, err := s.workingCopy(ctx, id)
	if err != nil {
		return nil, err
	}
	return paper.Clone(), nil
}

// workingCopy must be called with the id lock held.
func (s *PaperService) workingCopy(ctx context.Context, id string) (*model.Paper, error) {
	s.mu.Lock()
	paper, ok := s.working[id]
	s.mu.Unlock()
	if ok {
		return paper, nil
	}

	paper, err := s.ResolvePaper(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.working[id] = paper
	s.mu.Unlock()
	return paper, nil
}

// ResolveAnswerKey returns the cached answer key of a paper, generating and
// caching one on a miss.
func (s *PaperService) ResolveAnswerKey(ctx context.Context, paperID string) (*model.AnswerKey, error) {
	if key := s.store.GetAnswerKey(ctx, paperID); key != nil {
		s.log.Debug().Str("paper_id", paperID).Msg("Answer key served from cache")
		return key, nil
	}

	key, err := s.gen.GenerateAnswerKey(ctx, paperID)
	if err != nil {
		return nil, err
	}
	s.store.SaveAnswerKey(ctx, paperID, key)

	s.log.Info().Str("paper_id", paperID).Msg("Answer key generated")
	return key, nil
}

// ReplaceQuestion asks the generation service for a different question at
// the given position and swaps it into the working copy. The cached answer
// key is invalidated whether or not the replacement succeeds.
func (s *PaperService) ReplaceQuestion(ctx context.Context, paperID string, ref model.QuestionRef) (*model.Question, error) {
	unlock := s.lock(paperID)
	defer unlock()
	defer s.invalidateAnswerKey(ctx, paperID)

	paper, err := s.workingCopy(ctx, paperID)
	if err != nil {
		return nil, err
	}
	q, err := s.replace(ctx, paper, ref)
	if err != nil {
		return nil, err
	}
	out := q.Clone()
	return &out, nil
}

func (s *PaperService) replace(ctx context.Context, paper *model.Paper, ref model.QuestionRef) (*model.Question, error) {
	current, err := paper.Question(ref.SectionIndex, ref.QuestionIndex)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(current.Text) == "" {
		return nil, ErrEmptyQuestionText
	}

	res, err := s.gen.ReplaceQuestion(ctx, model.ReplaceQuestionRequest{
		PaperID:       paper.ID,
		SectionIndex:  ref.SectionIndex,
		QuestionIndex: ref.QuestionIndex,
		QuestionText:  current.Text,
	})
	if err != nil {
		return nil, err
	}
	if !res.Success || res.NewQuestion == nil {
		msg := res.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, fmt.Errorf("%w: %s", ErrReplaceRejected, msg)
	}

	*current = res.NewQuestion.Clone()
	s.log.Info().
		Str("paper_id", paper.ID).
		Int("section", ref.SectionIndex).
		Int("question", ref.QuestionIndex).
		Msg("Question replaced")
	return current, nil
}

// EditQuestion overwrites the text, options and answer of a question in the
// working copy. The question keeps its variant and its marks, and the cached
// answer key is invalidated.
func (s *PaperService) EditQuestion(ctx context.Context, paperID string, ref model.QuestionRef, req model.EditQuestionRequest) (*model.Question, error) {
	unlock := s.lock(paperID)
	defer unlock()

	paper, err := s.workingCopy(ctx, paperID)
	if err != nil {
		return nil, err
	}
	current, err := paper.Question(ref.SectionIndex, ref.QuestionIndex)
	if err != nil {
		return nil, err
	}

	answer := model.AnswerFromJSON(req.Answer)
	if current.HasOptions() {
		*current = model.NewMCQ(req.Question, append([]string(nil), req.Options...), answer, current.Marks)
	} else {
		*current = model.NewOpenEnded(req.Question, answer, current.Marks)
	}
	s.invalidateAnswerKey(ctx, paperID)

	out := current.Clone()
	return &out, nil
}

// ToggleSelection marks a question for replacement, or unmarks it when it
// is already marked. It reports whether the question is now selected.
func (s *PaperService) ToggleSelection(ctx context.Context, paperID string, ref model.QuestionRef) (bool, error) {
	unlock := s.lock(paperID)
	defer unlock()

	paper, err := s.workingCopy(ctx, paperID)
	if err != nil {
		return false, err
	}
	if _, err := paper.Question(ref.SectionIndex, ref.QuestionIndex); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sel := s.selections[paperID]
	for i, r := range sel {
		if r == ref {
			s.selections[paperID] = append(sel[:i:i], sel[i+1:]...)
			return false, nil
		}
	}
	s.selections[paperID] = append(sel, ref)
	return true, nil
}

// Selection returns the questions marked for replacement in marking order.
func (s *PaperService) Selection(paperID string) []model.QuestionRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.QuestionRef{}, s.selections[paperID]...)
}

// ClearSelection unmarks every question of a paper.
func (s *PaperService) ClearSelection(paperID string) {
	s.mu.Lock()
	delete(s.selections, paperID)
	s.mu.Unlock()
}

// ReplaceSelected replaces every marked question in marking order. Failures
// are collected rather than aborting the batch. The answer key is
// invalidated once and the selection is cleared afterwards.
func (s *PaperService) ReplaceSelected(ctx context.Context, paperID string) (*model.ReplaceSelectedResult, error) {
	unlock := s.lock(paperID)
	defer unlock()

	selected := s.Selection(paperID)
	if len(selected) == 0 {
		return nil, ErrNothingSelected
	}

	paper, err := s.workingCopy(ctx, paperID)
	if err != nil {
		return nil, err
	}

	result := &model.ReplaceSelectedResult{
		Replaced: []model.QuestionRef{},
		Failed:   []model.ReplaceFailure{},
	}
	for _, ref := range selected {
		if _, err := s.replace(ctx, paper, ref); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			if errors.Is(err, ErrEmptyQuestionText) {
				continue
			}
			s.log.Warn().Err(err).
				Str("paper_id", paperID).
				Int("section", ref.SectionIndex).
				Int("question", ref.QuestionIndex).
				Msg("Failed to replace question")
			result.Failed = append(result.Failed, model.ReplaceFailure{QuestionRef: ref, Message: remote.Message(err)})
			continue
		}
		result.Replaced = append(result.Replaced, ref)
	}

	s.invalidateAnswerKey(ctx, paperID)
	s.ClearSelection(paperID)
	return result, nil
}

// SaveWorkingCopy writes the working copy of a paper back to the cache.
func (s *PaperService) SaveWorkingCopy(ctx context.Context, paperID string) (*model.SavedPaper, error) {
	unlock := s.lock(paperID)
	defer unlock()

	paper, err := s.workingCopy(ctx, paperID)
	if err != nil {
		return nil, err
	}
	saved := s.store.SavePaper(ctx, paper.Clone())
	if saved == nil {
		return nil, ErrPaperNotSaved
	}
	return saved, nil
}

// DeletePaper removes a paper from the cache together with its answer key,
// working copy and selection. It reports whether the paper was cached.
func (s *PaperService) DeletePaper(ctx context.Context, paperID string) bool {
	unlock := s.lock(paperID)
	defer unlock()

	removed := s.store.DeletePaper(ctx, paperID)
	s.store.DeleteAnswerKey(ctx, paperID)

	s.mu.Lock()
	delete(s.working, paperID)
	delete(s.selections, paperID)
	s.mu.Unlock()

	if removed {
		s.log.Info().Str("paper_id", paperID).Msg("Paper deleted")
	}
	return removed
}

// ListPapers returns every cached paper, newest first.
func (s *PaperService) ListPapers(ctx context.Context) []model.SavedPaper {
	papers := s.store.GetAllPapers(ctx)
	if papers == nil {
		papers = []model.SavedPaper{}
	}
	return papers
}

// StorageInfo reports the size of the paper cache.
func (s *PaperService) StorageInfo(ctx context.Context) model.StorageInfo {
	return s.store.StorageInfo(ctx)
}

// ExportPapers returns the paper cache as pretty-printed JSON.
func (s *PaperService) ExportPapers(ctx context.Context) []byte {
	return s.store.ExportPapers(ctx)
}

// ImportPapers merges a JSON export into the paper cache.
func (s *PaperService) ImportPapers(ctx context.Context, data []byte) error {
	if !s.store.ImportPapers(ctx, data) {
		return ErrInvalidImportInput
	}
	return nil
}

// ClearAllPapers empties the paper cache and forgets every working copy.
// Cached answer keys are kept.
func (s *PaperService) ClearAllPapers(ctx context.Context) {
	s.store.ClearAllPapers(ctx)

	s.mu.Lock()
	s.working = make(map[string]*model.Paper)
	s.selections = make(map[string][]model.QuestionRef)
	s.mu.Unlock()
}

// invalidateAnswerKey runs after the working copy has changed, so it must
// not be skipped when the caller's context is already canceled.
func (s *PaperService) invalidateAnswerKey(ctx context.Context, paperID string) {
	if s.store.DeleteAnswerKey(context.WithoutCancel(ctx), paperID) {
		s.log.Debug().Str("paper_id", paperID).Msg("Answer key invalidated")
	}
}
