// Package underwriting sequences submissions and underwriter decisions across
// the applications store and the loans store.
package underwriting

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
)

const (
	QueueChannel             = "underwriter:queue"
	ApplicationChannelPrefix = "application:"
)

// ApplicationChannel carries events for a single application.
func ApplicationChannel(applicationID string) string {
	return ApplicationChannelPrefix + applicationID
}

const (
	EventSubmitted = "application_submitted"
	EventApproved  = "application_approved"
	EventRejected  = "application_rejected"
)

type ApplicationRepository interface {
	Insert(ctx context.Context, app *application.Application) error
	GetByID(ctx context.Context, id string) (*application.Application, error)
	ListByStatus(ctx context.Context, status application.Status, order application.SortOrder) ([]application.Application, error)
	Decide(ctx context.Context, id string, expected application.Status, t application.Transition) error
}

type LoanRepository interface {
	Create(ctx context.Context, l *loan.Loan) error
	Delete(ctx context.Context, id string) error
}

// Publisher fans events out to live subscribers. Delivery is best effort.
type Publisher interface {
	Publish(channel string, payload []byte)
}

type Recorder interface {
	Submitted()
	Decided(decision string)
	Conflict()
	PartialCommit()
}

type ApprovalResult struct {
	ApplicationID string `json:"applicationId"`
	LoanID        string `json:"loanId"`
}

type Service struct {
	apps      ApplicationRepository
	loans     LoanRepository
	publisher Publisher
	metrics   Recorder
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(apps ApplicationRepository, loans LoanRepository, opts ...Option) *Service {
	s := &Service{
		apps:      apps,
		loans:     loans,
		publisher: nopPublisher{},
		metrics:   nopRecorder{},
		logger:    zap.NewNop(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores a new pending application. Business fields are not checked
// here; they are judged when an underwriter decides.
func (s *Service) Submit(ctx context.Context, sub *application.Submission, ownerID *string) (string, error) {
	if sub == nil {
		return "", application.ErrEmptySubmission
	}
	app := &application.Application{
		ID:          s.newID(),
		Submission:  sub.Clone(),
		SubmittedAt: s.now(),
		Status:      application.StatusPending,
	}
	if ownerID != nil && *ownerID != "" {
		owner := *ownerID
		app.UserID = &owner
	}
	if err := s.apps.Insert(ctx, app); err != nil {
		return "", persistence("insert application", err)
	}

	s.metrics.Submitted()
	s.logger.Info("application submitted", zap.String("application_id", app.ID))
	s.publish(app.ID, EventSubmitted, map[string]any{
		"applicationId": app.ID,
		"submittedAt":   app.SubmittedAt,
	})
	return app.ID, nil
}

// Approve validates the terms, writes the loan and then moves the
// application out of pending. The loan is removed again when the
// application write does not land.
func (s *Service) Approve(ctx context.Context, applicationID string, rawTerms map[string]any, decidedBy string) (*ApprovalResult, error) {
	terms, err := application.ValidateLoanTerms(rawTerms)
	if err != nil {
		return nil, err
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, persistence("load application", err)
	}
	if !app.Status.CanDecide() {
		s.metrics.Conflict()
		return nil, application.ErrAlreadyProcessed
	}

	now := s.now()
	loanID := s.newID()
	record := loan.FromApplication(*app, *terms, decidedBy, now, loanID)

	transition, err := app.Approve(decidedBy, loanID, now)
	if err != nil {
		return nil, err
	}

	if err := s.loans.Create(ctx, record); err != nil {
		if errors.Is(err, application.ErrAlreadyProcessed) {
			s.metrics.Conflict()
			return nil, application.ErrAlreadyProcessed
		}
		return nil, persistence("insert loan", err)
	}

	if err := s.apps.Decide(ctx, applicationID, application.StatusPending, transition); err != nil {
		if s.decisionLanded(ctx, applicationID, loanID) {
			s.logger.Warn("approval write reported failure but is committed",
				zap.String("application_id", applicationID), zap.String("loan_id", loanID), zap.Error(err))
		} else {
			return nil, s.compensate(ctx, applicationID, loanID, err)
		}
	}

	s.metrics.Decided(string(application.StatusApproved))
	s.logger.Info("application approved",
		zap.String("application_id", applicationID),
		zap.String("loan_id", loanID),
		zap.String("decided_by", decidedBy))
	s.publish(applicationID, EventApproved, map[string]any{
		"applicationId": applicationID,
		"loanId":        loanID,
		"decidedBy":     decidedBy,
		"decidedAt":     now,
	})
	return &ApprovalResult{ApplicationID: applicationID, LoanID: loanID}, nil
}

func (s *Service) Reject(ctx context.Context, applicationID, reason, decidedBy string) error {
	trimmed, err := application.ValidateRejectionReason(reason)
	if err != nil {
		return err
	}

	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return persistence("load application", err)
	}
	now := s.now()
	transition, err := app.Reject(decidedBy, trimmed, now)
	if err != nil {
		s.metrics.Conflict()
		return err
	}

	if err := s.apps.Decide(ctx, applicationID, application.StatusPending, transition); err != nil {
		if errors.Is(err, application.ErrAlreadyProcessed) {
			s.metrics.Conflict()
		}
		return persistence("reject application", err)
	}

	s.metrics.Decided(string(application.StatusRejected))
	s.logger.Info("application rejected",
		zap.String("application_id", applicationID),
		zap.String("decided_by", decidedBy))
	s.publish(applicationID, EventRejected, map[string]any{
		"applicationId": applicationID,
		"decidedBy":     decidedBy,
		"decidedAt":     now,
		"reason":        trimmed,
	})
	return nil
}

// GetPending lists pending applications, newest submission first.
func (s *Service) GetPending(ctx context.Context) ([]application.Application, error) {
	apps, err := s.apps.ListByStatus(ctx, application.StatusPending, application.SortDescending)
	if err != nil {
		return nil, persistence("list pending applications", err)
	}
	return apps, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*application.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, persistence("load application", err)
	}
	return app, nil
}

// decisionLanded re-reads the application after a failed conditional write.
// A write can fail on the client side after the server committed it.
func (s *Service) decisionLanded(ctx context.Context, applicationID, loanID string) bool {
	current, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return false
	}
	return current.Status == application.StatusApproved && current.LoanID == loanID
}

func (s *Service) compensate(ctx context.Context, applicationID, loanID string, cause error) error {
	if err := s.loans.Delete(context.WithoutCancel(ctx), loanID); err != nil && !errors.Is(err, loan.ErrNotFound) {
		s.metrics.PartialCommit()
		s.logger.Error("orphaned loan after failed approval",
			zap.String("application_id", applicationID),
			zap.String("loan_id", loanID),
			zap.NamedError("cause", cause),
			zap.NamedError("cleanup_error", err))
		return &application.PartialCommitError{
			ApplicationID:   applicationID,
			LoanID:          loanID,
			Cause:           cause,
			CompensationErr: err,
		}
	}
	if errors.Is(cause, application.ErrAlreadyProcessed) {
		s.metrics.Conflict()
	}
	return persistence("approve application", cause)
}

func (s *Service) publish(applicationID, event string, data map[string]any) {
	payload, err := json.Marshal(map[string]any{"type": event, "data": data})
	if err != nil {
		s.logger.Warn("encode event", zap.String("event", event), zap.Error(err))
		return
	}
	s.publisher.Publish(QueueChannel, payload)
	s.publisher.Publish(ApplicationChannel(applicationID), payload)
}

// persistence passes domain conditions through and wraps everything else.
func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, application.ErrNotFound) || errors.Is(err, application.ErrAlreadyProcessed) {
		return err
	}
	var pe *application.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &application.PersistenceError{Op: op, Err: err}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte) {}

type nopRecorder struct{}

func (nopRecorder) Submitted()     {}
func (nopRecorder) Decided(string) {}
func (nopRecorder) Conflict()      {}
func (nopRecorder) PartialCommit() {}
