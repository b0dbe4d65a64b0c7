package model

import "time"

type VideoJobStatus string

const (
	VideoJobSubmitted VideoJobStatus = "submitted"
	VideoJobPolling   VideoJobStatus = "polling"
	VideoJobDone      VideoJobStatus = "done"
	VideoJobFailed    VideoJobStatus = "failed"
)

// VideoJob tracks one asynchronous video-generation task from submission to
// completion. Progress carries the current cosmetic status line shown while
// polling; it has no bearing on correctness.
type VideoJob struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId"`
	Status    VideoJobStatus `json:"status"`
	Progress  string         `json:"progress,omitempty"`
	Attempts  int            `json:"attempts"`
	LastError string         `json:"lastError,omitempty"`
	MessageID string         `json:"messageId,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
