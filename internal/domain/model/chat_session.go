package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	titleMaxRunes = 30
	titleEllipsis = "…"

	// FallbackTitle names a session whose first message is blank
	// (e.g. an image-only turn).
	FallbackTitle = "New chat"
)

// ChatSession is a named, ordered group of conversation turns. It is the
// unit of persistence and selection; messages are append-only from the
// client's perspective.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewChatSession(id, firstMessageText string) *ChatSession {
	return &ChatSession{
		ID:        id,
		Title:     DeriveTitle(firstMessageText),
		Messages:  make([]Message, 0, 8),
		UpdatedAt: time.Now(),
	}
}

// Append adds a message and bumps UpdatedAt. The first appended message
// (re)computes the title so a session created empty still gets named.
func (s *ChatSession) Append(m Message) {
	if len(s.Messages) == 0 && m.Role == RoleUser {
		s.Title = DeriveTitle(m.Content)
	}
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = time.Now()
}

// Recent returns the last n messages, or all of them when n is zero or
// exceeds the history length.
func (s *ChatSession) Recent(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// DeriveTitle truncates the first user message to 30 runes plus an ellipsis
// marker, falling back to a fixed label for blank input.
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return FallbackTitle
	}
	if utf8.RuneCountInString(text) <= titleMaxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleMaxRunes]) + titleEllipsis
}
