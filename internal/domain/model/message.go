package model

import "time"

// Roles for a conversation turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is the uniform record for one conversation turn. A message is
// immutable once appended to a session. ImageRef/VideoRef are local asset
// URLs, never raw bytes; the asset store owns the binary.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	ImageRef  string    `json:"image,omitempty"`
	VideoRef  string    `json:"video,omitempty"`
}
