package repository

import "context"

// ProfileRepository stores the per-client display name. A missing or
// malformed value falls back to the configured default, never an error
// surfaced to the user.
type ProfileRepository interface {
	DisplayName(ctx context.Context, clientID string) (string, error)
	SetDisplayName(ctx context.Context, clientID, name string) error
}

// AssetStore keeps downloaded binary assets (generated images and video
// clips) addressable by id so the transcript can reference them by URL.
type AssetStore interface {
	Put(ctx context.Context, id, mimeType string, data []byte) error
	Get(ctx context.Context, id string) (mimeType string, data []byte, err error)
}
