// File: internal/infra/kv/repos.go

// Package kv holds repositories that only need the key-value port, so they
// work unchanged over redis or the in-memory dev store.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/ports/repository"
)

var (
	_ repository.ProfileRepository = (*ProfileRepo)(nil)
	_ repository.AssetStore        = (*AssetStore)(nil)
)

// ProfileRepo stores the per-client display name under a namespaced key.
// Profile keys never expire; a renamed profile should survive idle periods.
type ProfileRepo struct {
	kv repository.KVStore
}

func NewProfileRepo(kv repository.KVStore) *ProfileRepo {
	return &ProfileRepo{kv: kv}
}

func profileKey(clientID string) string { return "chat:profile:" + clientID }

func (r *ProfileRepo) DisplayName(ctx context.Context, clientID string) (string, error) {
	b, err := r.kv.Get(ctx, profileKey(clientID))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *ProfileRepo) SetDisplayName(ctx context.Context, clientID, name string) error {
	return r.kv.Set(ctx, profileKey(clientID), []byte(name), 0)
}

// assetEnvelope is the stored form of a binary asset. Data rides through
// encoding/json's base64 []byte handling.
type assetEnvelope struct {
	MIMEType string `json:"mime"`
	Data     []byte `json:"data"`
}

// AssetStore keeps generated media addressable by id, with a TTL so
// abandoned assets age out of the store on their own.
type AssetStore struct {
	kv  repository.KVStore
	ttl time.Duration
}

func NewAssetStore(kv repository.KVStore, ttl time.Duration) *AssetStore {
	return &AssetStore{kv: kv, ttl: ttl}
}

func assetKey(id string) string { return "chat:asset:" + id }

func (s *AssetStore) Put(ctx context.Context, id, mimeType string, data []byte) error {
	b, err := json.Marshal(assetEnvelope{MIMEType: mimeType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal asset: %w", err)
	}
	return s.kv.Set(ctx, assetKey(id), b, s.ttl)
}

func (s *AssetStore) Get(ctx context.Context, id string) (string, []byte, error) {
	b, err := s.kv.Get(ctx, assetKey(id))
	if err != nil {
		return "", nil, err
	}
	var env assetEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return "", nil, domain.ErrNotFound
	}
	return env.MIMEType, env.Data, nil
}
