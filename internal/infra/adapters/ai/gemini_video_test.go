// File: internal/infra/adapters/ai/gemini_video_test.go
package ai

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestIsCredentialShaped(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"not found message", errors.New("rpc error: Requested entity was not found."), true},
		{"api 403", genai.APIError{Code: 403, Message: "forbidden"}, true},
		{"api 404", genai.APIError{Code: 404, Message: "not found"}, true},
		{"api 500", genai.APIError{Code: 500, Message: "boom"}, false},
		{"wrapped 403", fmt.Errorf("submit: %w", genai.APIError{Code: 403}), true},
		{"plain error", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isCredentialShaped(tc.err); got != tc.want {
				t.Fatalf("isCredentialShaped(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
