package adapter

import (
	"context"

	"next-ai-chat/internal/domain/model"
)

// Turn is one role-tagged exchange handed to the completion backend.
// Image is only meaningful on the final user turn.
type Turn struct {
	Role    string
	Content string
	Image   *ImagePayload
}

// ImagePayload carries one inline binary image part.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// CompletionRequest shapes one remote completion call: ordered history plus
// the new user turn, classified modality, and the creator name woven into the
// persona instruction.
type CompletionRequest struct {
	Modality    model.Modality
	Turns       []Turn
	CreatorName string
}

// CompletionResult is the normalized response: optional text, optional image.
type CompletionResult struct {
	Text  string
	Image *ImagePayload
}

// Canned sentences for the normalization policy: an image-only result gets a
// confirmation, an empty result gets an apology, a failed call gets a generic
// error line shown in-conversation.
const (
	FallbackImageOnlyText = "I've generated that image for you."
	FallbackEmptyText     = "I'm sorry, I couldn't process that."
	GenericErrorText      = "I encountered an error. Please try again."
)

// CompletionAdapter is the port for the text/image completion endpoint.
// Implementations must normalize empty and image-only responses into the
// canned fallback sentences and must never panic on malformed replies.
type CompletionAdapter interface {
	// Name identifies the backend in logs and metric labels.
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
