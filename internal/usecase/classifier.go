// File: internal/usecase/classifier.go
package usecase

import (
	"strings"

	"next-ai-chat/internal/domain/model"
)

// Trigger phrases are matched as case-insensitive substrings. Video is
// checked before image so "generate a video of a painting" stays VIDEO.
var (
	videoTriggers = []string{
		"generate a video",
		"make a video",
		"create a video",
		"video of",
	}

	imageTriggers = []string{
		"draw",
		"generate an image",
		"create a picture",
		"show me a",
		"generate image",
		"make a picture",
		"paint",
		"visualize",
		"render",
	}
)

// ClassifyModality inspects the latest user text and decides whether the
// turn is a plain conversation turn, an image request, or a video request.
// Deterministic, no side effects.
func ClassifyModality(text string) model.Modality {
	lower := strings.ToLower(text)
	for _, kw := range videoTriggers {
		if strings.Contains(lower, kw) {
			return model.ModalityVideo
		}
	}
	for _, kw := range imageTriggers {
		if strings.Contains(lower, kw) {
			return model.ModalityImage
		}
	}
	return model.ModalityText
}
