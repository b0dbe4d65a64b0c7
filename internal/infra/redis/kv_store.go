// File: internal/infra/redis/kv_store.go
package redis

import (
	"context"
	"time"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/metrics"
)

var _ repository.KVStore = (*KVStore)(nil)

// KVStore implements the key-value port over redis strings.
type KVStore struct {
	client *Client
}

func NewKVStore(client *Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key)
	if IsNil(err) {
		metrics.IncKVOp("get", nil)
		return nil, domain.ErrNotFound
	}
	metrics.IncKVOp("get", err)
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.client.Set(ctx, key, value, ttl)
	metrics.IncKVOp("set", err)
	return err
}

func (s *KVStore) Del(ctx context.Context, key string) error {
	err := s.client.Del(ctx, key)
	metrics.IncKVOp("del", err)
	return err
}
