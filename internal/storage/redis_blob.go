package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBlobStore struct {
	client *redis.Client
}

// NewRedisBlobStore stores blobs as plain Redis string values.
func NewRedisBlobStore(client *redis.Client) BlobStore {
	return &redisBlobStore{client: client}
}

func (s *redisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *redisBlobStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisBlobStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
