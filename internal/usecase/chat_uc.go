// File: internal/usecase/chat_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"next-ai-chat/internal/domain"
	"next-ai-chat/internal/domain/model"
	"next-ai-chat/internal/domain/ports/adapter"
	"next-ai-chat/internal/domain/ports/repository"
	"next-ai-chat/internal/infra/metrics"
)

const (
	videoSuccessText = "Your video has been rendered successfully."
	videoFailureText = "Failed to generate video. Ensure your API key is from a paid project and try again."

	assetURLPrefix = "/api/v1/assets/"
)

// Compile-time check
var _ ChatUseCase = (*chatUC)(nil)

// SendResult is what one submitted turn produced. AssistantMessage is set
// for TEXT and IMAGE turns; Job is set for VIDEO turns, whose assistant
// message lands asynchronously once the job finishes.
type SendResult struct {
	SessionID        string
	UserMessage      *model.Message
	AssistantMessage *model.Message
	Job              *model.VideoJob
}

type ChatUseCase interface {
	SendMessage(ctx context.Context, clientID, sessionID, text string, image *adapter.ImagePayload) (*SendResult, error)
	Job(ctx context.Context, clientID, jobID string) (*model.VideoJob, error)
	CancelJob(ctx context.Context, clientID, jobID string) error
}

type chatUC struct {
	sessions  repository.SessionRepository
	sessionUC SessionUseCase
	profileUC ProfileUseCase
	ai        adapter.CompletionAdapter
	gate      adapter.CredentialGate
	launcher  VideoLauncher
	assets    repository.AssetStore
	jobs      *jobRegistry
	window    int
	log       *zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{} // clientID+"/"+sessionID
}

func NewChatUseCase(
	sessions repository.SessionRepository,
	sessionUC SessionUseCase,
	profileUC ProfileUseCase,
	ai adapter.CompletionAdapter,
	gate adapter.CredentialGate,
	launcher VideoLauncher,
	assets repository.AssetStore,
	historyWindow int,
	log *zerolog.Logger,
) *chatUC {
	l := log.With().Str("component", "ChatUC").Logger()
	return &chatUC{
		sessions:  sessions,
		sessionUC: sessionUC,
		profileUC: profileUC,
		ai:        ai,
		gate:      gate,
		launcher:  launcher,
		assets:    assets,
		jobs:      newJobRegistry(),
		window:    historyWindow,
		log:       &l,
		inflight:  make(map[string]struct{}),
	}
}

func (c *chatUC) SendMessage(ctx context.Context, clientID, sessionID, text string, image *adapter.ImagePayload) (*SendResult, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, domain.ErrEmptyPrompt
	}

	var session *model.ChatSession
	var err error
	if sessionID == "" {
		session, err = c.sessionUC.Create(ctx, clientID, text)
	} else {
		session, err = c.sessions.FindByID(ctx, clientID, sessionID)
		if err == nil {
			err = c.sessions.SetCurrentSession(ctx, clientID, sessionID)
		}
	}
	if err != nil {
		return nil, err
	}

	if !c.acquire(clientID, session.ID) {
		return nil, domain.ErrSessionBusy
	}

	userMsg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
	}
	if image != nil {
		ref, err := c.storeAsset(ctx, image.MIMEType, image.Data)
		if err != nil {
			c.release(clientID, session.ID)
			return nil, err
		}
		userMsg.ImageRef = ref
	}
	session.Append(userMsg)
	if err := c.sessions.AppendMessage(ctx, clientID, session.ID, userMsg); err != nil {
		c.release(clientID, session.ID)
		return nil, err
	}
	metrics.IncMessageAppended(model.RoleUser)

	modality := ClassifyModality(text)
	if modality == model.ModalityVideo {
		job, err := c.startVideoJob(ctx, clientID, session.ID, text)
		if err != nil {
			c.release(clientID, session.ID)
			return nil, err
		}
		return &SendResult{SessionID: session.ID, UserMessage: &userMsg, Job: job}, nil
	}

	defer c.release(clientID, session.ID)
	assistant := c.completeTurn(ctx, clientID, session, modality, image)
	if err := c.sessions.AppendMessage(ctx, clientID, session.ID, assistant); err != nil {
		return nil, err
	}
	metrics.IncMessageAppended(model.RoleAssistant)
	return &SendResult{SessionID: session.ID, UserMessage: &userMsg, AssistantMessage: &assistant}, nil
}

// completeTurn calls the completion backend and normalizes the outcome into
// one assistant message. Transport and backend failures are converted into
// the generic error sentence, never returned to the caller.
func (c *chatUC) completeTurn(ctx context.Context, clientID string, session *model.ChatSession, modality model.Modality, image *adapter.ImagePayload) model.Message {
	creator, err := c.profileUC.DisplayName(ctx, clientID)
	if err != nil {
		creator = ""
	}

	history := session.Recent(c.window)
	turns := make([]adapter.Turn, 0, len(history))
	for i, m := range history {
		t := adapter.Turn{Role: m.Role, Content: m.Content}
		// The inline image travels only on the final user turn.
		if i == len(history)-1 && m.Role == model.RoleUser && image != nil {
			t.Image = image
		}
		turns = append(turns, t)
	}

	start := time.Now()
	result, err := c.ai.Complete(ctx, adapter.CompletionRequest{
		Modality:    modality,
		Turns:       turns,
		CreatorName: creator,
	})
	metrics.ObserveCompletion(c.ai.Name(), string(modality), int(time.Since(start)/time.Millisecond), err)

	assistant := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Timestamp: time.Now(),
	}
	if err != nil {
		c.log.Warn().Err(err).Str("session_id", session.ID).Msg("completion failed")
		metrics.IncFallbackReply("error")
		assistant.Content = adapter.GenericErrorText
		return assistant
	}

	assistant.Content = result.Text
	if result.Image != nil {
		ref, aerr := c.storeAsset(ctx, result.Image.MIMEType, result.Image.Data)
		if aerr != nil {
			c.log.Warn().Err(aerr).Msg("storing generated image failed")
		} else {
			assistant.ImageRef = ref
		}
	}
	return assistant
}

// startVideoJob consults the credential gate, registers a job record, and
// hands the long poll to the launcher. The session stays busy until the job
// reaches a terminal state.
func (c *chatUC) startVideoJob(ctx context.Context, clientID, sessionID, prompt string) (*model.VideoJob, error) {
	if err := c.gate.Check(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &model.VideoJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Status:    model.VideoJobSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.jobs.put(clientID, job)

	onProgress := func(line string, attempt int) {
		c.jobs.update(job.ID, func(j *model.VideoJob) {
			j.Status = model.VideoJobPolling
			j.Progress = line
			j.Attempts = attempt
		})
	}
	onDone := func(out VideoOutcome) {
		c.finishVideoJob(clientID, job.ID, sessionID, out, now)
	}
	if err := c.launcher.Launch(job, prompt, onProgress, onDone); err != nil {
		c.jobs.update(job.ID, func(j *model.VideoJob) {
			j.Status = model.VideoJobFailed
			j.LastError = err.Error()
		})
		return nil, err
	}
	cp := *job
	return &cp, nil
}

func (c *chatUC) finishVideoJob(clientID, jobID, sessionID string, out VideoOutcome, startedAt time.Time) {
	// Launcher callbacks outlive the originating request.
	ctx := context.Background()
	defer c.release(clientID, sessionID)

	duration := time.Since(startedAt).Seconds()
	switch {
	case errors.Is(out.Err, domain.ErrCredentialRequired):
		// Surfaced through the job status so the client can invoke the
		// credential-selection hook; no error message enters the transcript.
		c.jobs.update(jobID, func(j *model.VideoJob) {
			j.Status = model.VideoJobFailed
			j.LastError = domain.ErrCredentialRequired.Error()
		})
		metrics.ObserveVideoJob("credential_required", out.Attempts, duration)
		return

	case out.Err != nil:
		c.log.Warn().Err(out.Err).Str("job_id", jobID).Msg("video job failed")
		msg := model.Message{
			ID:        uuid.NewString(),
			Role:      model.RoleSystem,
			Content:   videoFailureText,
			Timestamp: time.Now(),
		}
		if err := c.sessions.AppendMessage(ctx, clientID, sessionID, msg); err != nil {
			c.log.Error().Err(err).Msg("appending video failure message")
		}
		metrics.IncMessageAppended(model.RoleSystem)
		c.jobs.update(jobID, func(j *model.VideoJob) {
			j.Status = model.VideoJobFailed
			j.LastError = out.Err.Error()
			j.MessageID = msg.ID
		})
		metrics.ObserveVideoJob(string(model.VideoJobFailed), out.Attempts, duration)
		return
	}

	ref, err := c.storeAsset(ctx, out.MIMEType, out.AssetData)
	if err != nil {
		c.log.Error().Err(err).Str("job_id", jobID).Msg("storing video asset failed")
		c.jobs.update(jobID, func(j *model.VideoJob) {
			j.Status = model.VideoJobFailed
			j.LastError = err.Error()
		})
		metrics.ObserveVideoJob(string(model.VideoJobFailed), out.Attempts, duration)
		return
	}

	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   videoSuccessText,
		VideoRef:  ref,
		Timestamp: time.Now(),
	}
	if err := c.sessions.AppendMessage(ctx, clientID, sessionID, msg); err != nil {
		c.log.Error().Err(err).Msg("appending video reply")
	}
	metrics.IncMessageAppended(model.RoleAssistant)
	c.jobs.update(jobID, func(j *model.VideoJob) {
		j.Status = model.VideoJobDone
		j.Progress = ""
		j.MessageID = msg.ID
	})
	metrics.ObserveVideoJob(string(model.VideoJobDone), out.Attempts, duration)
}

func (c *chatUC) Job(ctx context.Context, clientID, jobID string) (*model.VideoJob, error) {
	job, ok := c.jobs.get(clientID, jobID)
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return job, nil
}

func (c *chatUC) CancelJob(ctx context.Context, clientID, jobID string) error {
	if _, ok := c.jobs.get(clientID, jobID); !ok {
		return domain.ErrJobNotFound
	}
	c.launcher.Cancel(jobID)
	return nil
}

func (c *chatUC) storeAsset(ctx context.Context, mimeType string, data []byte) (string, error) {
	id := uuid.NewString()
	if err := c.assets.Put(ctx, id, mimeType, data); err != nil {
		return "", err
	}
	return assetURLPrefix + id, nil
}

func (c *chatUC) acquire(clientID, sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := clientID + "/" + sessionID
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *chatUC) release(clientID, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, clientID+"/"+sessionID)
}
