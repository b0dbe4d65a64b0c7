package repository

import (
	"context"
	"time"
)

// KVStore is the durable key-value port backing profile state and transient
// assets. Get returns domain.ErrNotFound for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}
