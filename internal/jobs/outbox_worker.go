package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/notify"
)

const TopicApplicationDecided = "application_decided"

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

// DecisionPayload is enqueued in the same transaction as a decision.
type DecisionPayload struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

type ApplicationReader interface {
	GetByID(ctx context.Context, id string) (*application.Application, error)
}

type Worker struct {
	outboxRepo   OutboxRepository
	apps         ApplicationReader
	sender       notify.Sender
	logger       *zap.Logger
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, apps ApplicationReader, sender notify.Sender, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		outboxRepo:  outboxRepo,
		apps:        apps,
		sender:      sender,
		logger:      logger,
		maxAttempts: 5,
		now:         func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, interval time.Duration, batchSize int32) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := w.RunOnce(runCtx, batchSize)
			cancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("outbox run failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	// A failed job is left to the claim lease; the rest of the batch still runs.
	var errs []error
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := w.processJob(ctx, job); err != nil {
			w.logger.Error("outbox job failed", zap.Int64("job_id", job.ID), zap.String("topic", job.Topic), zap.Error(err))
			errs = append(errs, fmt.Errorf("job %d: %w", job.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case TopicApplicationDecided:
		return w.processDecision(ctx, job)
	default:
		return w.handleJobError(ctx, job, errors.New("unsupported_topic"))
	}
}

func (w *Worker) processDecision(ctx context.Context, job OutboxJob) error {
	var payload DecisionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.outboxRepo.MarkFailed(ctx, job.ID, "invalid_payload")
	}
	if payload.ApplicationID == "" {
		return w.outboxRepo.MarkFailed(ctx, job.ID, "missing_application_id")
	}

	app, err := w.apps.GetByID(ctx, payload.ApplicationID)
	if errors.Is(err, application.ErrNotFound) {
		return w.outboxRepo.MarkFailed(ctx, job.ID, "application_not_found")
	}
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	info := app.PersonalInfo
	if info == nil || !info.TextUpdatesConsent || info.PhoneNumber == "" {
		return w.outboxRepo.MarkDone(ctx, job.ID)
	}
	phone, err := notify.NormalizePhone(info.PhoneNumber)
	if err != nil {
		w.logger.Warn("skipping decision sms", zap.String("application_id", app.ID), zap.Error(err))
		return w.outboxRepo.MarkDone(ctx, job.ID)
	}

	if err := w.sender.SendSMS(ctx, phone, decisionMessage(app)); err != nil {
		return w.handleJobError(ctx, job, err)
	}
	w.logger.Info("decision sms sent", zap.String("application_id", app.ID), zap.String("status", string(app.Status)))
	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func decisionMessage(app *application.Application) string {
	name := "there"
	if app.PersonalInfo != nil && app.PersonalInfo.FirstName != "" {
		name = app.PersonalInfo.FirstName
	}
	switch app.Status {
	case application.StatusApproved:
		return fmt.Sprintf("Hi %s, good news: your loan application has been approved. Sign in to review your loan terms.", name)
	case application.StatusRejected:
		return fmt.Sprintf("Hi %s, we have finished reviewing your loan application. Sign in to see the decision.", name)
	}
	return fmt.Sprintf("Hi %s, your loan application status is now %s.", name, app.Status)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		w.logger.Error("outbox job failed", zap.Int64("job_id", job.ID), zap.String("topic", job.Topic), zap.Error(err))
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}
