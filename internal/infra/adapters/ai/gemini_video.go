// File: internal/infra/adapters/ai/gemini_video.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/ports/adapter"
)

var _ adapter.VideoGenerator = (*GeminiAdapter)(nil)

const videoMIMEType = "video/mp4"

// SubmitVideoJob sends the prompt with the fixed generation parameters
// (single clip, configured resolution and aspect ratio) and returns the
// operation handle to poll.
func (g *GeminiAdapter) SubmitVideoJob(ctx context.Context, prompt string) (*adapter.VideoOperation, error) {
	cfg := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		Resolution:     g.opts.VideoResolution,
		AspectRatio:    g.opts.VideoAspectRatio,
	}
	op, err := g.client.Models.GenerateVideos(ctx, g.opts.VideoModel, prompt, nil, cfg)
	if err != nil {
		if isCredentialShaped(err) {
			return nil, domain.ErrCredentialRequired
		}
		return nil, fmt.Errorf("gemini submit video: %w", err)
	}
	return &adapter.VideoOperation{ProviderRef: op, Done: op.Done}, nil
}

func (g *GeminiAdapter) PollVideoJob(ctx context.Context, vo *adapter.VideoOperation) (*adapter.VideoOperation, error) {
	op, ok := vo.ProviderRef.(*genai.GenerateVideosOperation)
	if !ok {
		return nil, errors.New("gemini: foreign video operation handle")
	}
	op, err := g.client.Operations.GetVideosOperation(ctx, op, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini poll video: %w", err)
	}
	return &adapter.VideoOperation{ProviderRef: op, Done: op.Done}, nil
}

func (g *GeminiAdapter) DownloadVideoAsset(ctx context.Context, vo *adapter.VideoOperation) ([]byte, string, error) {
	op, ok := vo.ProviderRef.(*genai.GenerateVideosOperation)
	if !ok {
		return nil, "", errors.New("gemini: foreign video operation handle")
	}
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 || op.Response.GeneratedVideos[0].Video == nil {
		return nil, "", errors.New("gemini: video generation finished without an asset")
	}
	video := op.Response.GeneratedVideos[0].Video
	data, err := g.client.Files.Download(ctx, video, nil)
	if err != nil {
		return nil, "", fmt.Errorf("gemini download video: %w", err)
	}
	if len(data) == 0 {
		// Some SDK paths populate the handle instead of returning bytes.
		data = video.VideoBytes
	}
	if len(data) == 0 {
		return nil, "", errors.New("gemini: empty video asset")
	}
	mime := video.MIMEType
	if mime == "" {
		mime = videoMIMEType
	}
	return data, mime, nil
}

// isCredentialShaped recognizes the backend's rejection of unpaid or absent
// API keys for the video models.
func isCredentialShaped(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == 403 || apiErr.Code == 404) {
		return true
	}
	return strings.Contains(err.Error(), "Requested entity was not found")
}
