// File: internal/infra/sched/retention_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/metrics"
)

// RetentionWorker periodically prunes sessions idle past the retention
// window. Disabled when retention days is zero.
type RetentionWorker struct {
	interval time.Duration
	maxIdle  time.Duration
	sessions repository.SessionRepository
	log      *zerolog.Logger
}

func NewRetentionWorker(interval time.Duration, retentionDays int, sessions repository.SessionRepository, logger *zerolog.Logger) *RetentionWorker {
	retLog := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval: interval,
		maxIdle:  time.Duration(retentionDays) * 24 * time.Hour,
		sessions: sessions,
		log:      &retLog,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	if w.maxIdle <= 0 {
		w.log.Info().Msg("retention disabled")
		return nil
	}
	w.log.Info().Msg("Starting retention worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().Add(-w.maxIdle)
			n, err := w.sessions.PruneIdle(ctx, cutoff)
			if err != nil {
				w.log.Error().Err(err).Msg("retention sweep error")
			}
			if n > 0 {
				metrics.IncSessionsPruned(n)
				w.log.Info().Int64("count", n).Msg("idle sessions pruned")
			}
		}
	}
}
