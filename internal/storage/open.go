package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/database"
)

// Open builds the blob backend selected by cfg.StoreDriver. The returned
// close function releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisBlobStore(rdb), rdb.Close, nil
	case config.StoreDriverFile:
		store, err := NewFileBlobStore(cfg.StoreDir)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("dir", cfg.StoreDir).Msg("File store ready")
		return store, noop, nil
	case config.StoreDriverMemory:
		log.Warn().Msg("Using in-memory store, nothing will be persisted")
		return NewMemoryBlobStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
