package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
)

func TestFormStateStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	s := NewFormStateStore(blobs, zerolog.Nop())

	if s.Load(ctx) != nil {
		t.Fatal("expected no form state")
	}

	s.Save(ctx, &model.FormState{Board: model.BoardICSE, Subject: "Maths", Chapters: []string{"Algebra"}, TotalMarks: 40})
	got := s.Load(ctx)
	if got == nil || got.Subject != "Maths" || got.TotalMarks != 40 {
		t.Fatalf("Load = %+v", got)
	}

	s.Clear(ctx)
	if s.Load(ctx) != nil {
		t.Error("form state survived Clear")
	}
}

func TestFormStateCorruptIsDeleted(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryBlobStore()
	_ = blobs.Set(ctx, config.CacheKey.FormStateKey(), []byte("{oops"), 0)
	s := NewFormStateStore(blobs, zerolog.Nop())

	if s.Load(ctx) != nil {
		t.Fatal("corrupt form state returned")
	}
	if _, err := blobs.Get(ctx, config.CacheKey.FormStateKey()); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("corrupt blob not removed: %v", err)
	}
}
