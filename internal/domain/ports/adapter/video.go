package adapter

import "context"

// VideoOperation is the handle for a server-side video-generation job.
// ProviderRef holds the provider's own operation object between polls.
type VideoOperation struct {
	ProviderRef any
	Done        bool
}

// VideoGenerator is the port for the long-running video job endpoint.
type VideoGenerator interface {
	// SubmitVideoJob sends the prompt with fixed generation parameters and
	// returns a job handle. A missing or rejected credential surfaces as
	// domain.ErrCredentialRequired.
	SubmitVideoJob(ctx context.Context, prompt string) (*VideoOperation, error)

	// PollVideoJob re-fetches job status, returning an updated handle.
	PollVideoJob(ctx context.Context, op *VideoOperation) (*VideoOperation, error)

	// DownloadVideoAsset fetches the finished clip as bytes plus MIME type.
	DownloadVideoAsset(ctx context.Context, op *VideoOperation) ([]byte, string, error)
}

// CredentialGate is the host-provided capability to check whether an API
// credential is configured. It is consulted before submitting a video job.
type CredentialGate interface {
	// Check returns nil when a credential is configured, otherwise
	// domain.ErrCredentialRequired.
	Check(ctx context.Context) error
}
