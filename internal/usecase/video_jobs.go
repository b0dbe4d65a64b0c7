// File: internal/usecase/video_jobs.go
package usecase

import (
	"sync"
	"time"

	"next-ai-chat/internal/domain/model"
)

// VideoOutcome is what a launched video job reports back when it reaches a
// terminal state.
type VideoOutcome struct {
	AssetData []byte
	MIMEType  string
	Attempts  int
	Err       error
}

// VideoLauncher runs a video-generation job off the request path. Progress
// and completion arrive on callbacks from the launcher's own goroutine.
type VideoLauncher interface {
	Launch(job *model.VideoJob, prompt string, onProgress func(line string, attempt int), onDone func(VideoOutcome)) error
	Cancel(jobID string) bool
}

// Terminal jobs stay readable for this long so the client can collect the
// final status, then the registry drops them.
const jobRetention = 10 * time.Minute

// jobRegistry tracks in-flight and recently finished video jobs in memory.
// Jobs are transient; they are not part of the persisted session state.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*jobEntry
}

type jobEntry struct {
	clientID string
	job      model.VideoJob
	doneAt   time.Time // zero while the job is still running
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*jobEntry)}
}

func (r *jobRegistry) put(clientID string, job *model.VideoJob) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(time.Now())
	r.jobs[job.ID] = &jobEntry{clientID: clientID, job: *job}
}

// get returns a copy so callers never observe concurrent mutation.
func (r *jobRegistry) get(clientID, jobID string) (*model.VideoJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.jobs[jobID]
	if !ok || e.clientID != clientID {
		return nil, false
	}
	cp := e.job
	return &cp, true
}

func (r *jobRegistry) update(jobID string, fn func(j *model.VideoJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.jobs[jobID]
	if !ok {
		return
	}
	fn(&e.job)
	e.job.UpdatedAt = time.Now()
	terminal := e.job.Status == model.VideoJobDone || e.job.Status == model.VideoJobFailed
	if terminal && e.doneAt.IsZero() {
		e.doneAt = time.Now()
	}
}

// evictLocked drops terminal jobs past the retention window. Caller holds
// the write lock.
func (r *jobRegistry) evictLocked(now time.Time) {
	for id, e := range r.jobs {
		if !e.doneAt.IsZero() && now.Sub(e.doneAt) > jobRetention {
			delete(r.jobs, id)
		}
	}
}
