// File: internal/infra/worker/video_runner.go
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
	"next-ai-chat/internal/usecase"
)

var _ usecase.VideoLauncher = (*VideoRunner)(nil)

// Cosmetic status lines rotated at poll cadence while a clip renders.
var progressLines = []string{
	"Storyboarding your scene…",
	"Rendering frames…",
	"Adding lighting and motion…",
	"Encoding the final cut…",
}

// VideoRunner drives video-generation jobs: submit, poll at a fixed
// interval up to a bounded number of attempts, then download the asset.
// Each job runs as a pool task with its own cancelable context, so closing
// the view (or shutdown) stops the poll loop instead of leaking it.
type VideoRunner struct {
	gen         adapter.VideoGenerator
	pool        *Pool
	base        context.Context
	interval    time.Duration
	maxAttempts int
	log         *zerolog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewVideoRunner(base context.Context, gen adapter.VideoGenerator, pool *Pool, interval time.Duration, maxAttempts int, log *zerolog.Logger) *VideoRunner {
	l := log.With().Str("component", "VideoRunner").Logger()
	return &VideoRunner{
		gen:         gen,
		pool:        pool,
		base:        base,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         &l,
		cancels:     make(map[string]context.CancelFunc),
	}
}

func (r *VideoRunner) Launch(job *model.VideoJob, prompt string, onProgress func(line string, attempt int), onDone func(usecase.VideoOutcome)) error {
	ctx, cancel := context.WithCancel(r.base)
	r.mu.Lock()
	r.cancels[job.ID] = cancel
	r.mu.Unlock()

	jobID := job.ID
	task := func(context.Context) error {
		out := r.run(ctx, jobID, prompt, onProgress)
		// Deregister before reporting so Cancel cannot race a finished job.
		cancel()
		r.mu.Lock()
		delete(r.cancels, jobID)
		r.mu.Unlock()
		onDone(out)
		return nil
	}
	if err := r.pool.Submit(task); err != nil {
		cancel()
		r.mu.Lock()
		delete(r.cancels, jobID)
		r.mu.Unlock()
		return err
	}
	return nil
}

// Cancel stops a running job's poll loop. Returns false when the job is not
// (or no longer) running.
func (r *VideoRunner) Cancel(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.cancels[jobID]
	if ok {
		cancel()
	}
	return ok
}

func (r *VideoRunner) run(ctx context.Context, jobID, prompt string, onProgress func(line string, attempt int)) usecase.VideoOutcome {
	start := time.Now()
	op, err := r.gen.SubmitVideoJob(ctx, prompt)
	if err != nil {
		return usecase.VideoOutcome{Err: err}
	}
	r.log.Info().Str("job_id", jobID).Msg("video job submitted")

	attempts := 0
	for !op.Done {
		if attempts >= r.maxAttempts {
			r.log.Warn().Str("job_id", jobID).Int("attempts", attempts).Msg("poll budget exceeded")
			return usecase.VideoOutcome{Attempts: attempts, Err: domain.ErrPollBudgetExceeded}
		}
		select {
		case <-ctx.Done():
			return usecase.VideoOutcome{Attempts: attempts, Err: ctx.Err()}
		case <-time.After(r.interval):
		}
		attempts++
		onProgress(progressLines[(attempts-1)%len(progressLines)], attempts)
		op, err = r.gen.PollVideoJob(ctx, op)
		if err != nil {
			return usecase.VideoOutcome{Attempts: attempts, Err: err}
		}
	}

	data, mime, err := r.gen.DownloadVideoAsset(ctx, op)
	if err != nil {
		return usecase.VideoOutcome{Attempts: attempts, Err: err}
	}
	r.log.Info().
		Str("job_id", jobID).
		Int("attempts", attempts).
		Dur("duration", time.Since(start)).
		Msg("video job finished")
	return usecase.VideoOutcome{AssetData: data, MIMEType: mime, Attempts: attempts}
}
