package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/jobs"
)

// ApplicationRepository stores the borrower document as JSONB next to the
// lifecycle columns. A decision and its outbox job commit together.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `
id::text, user_id, status, document, submitted_at,
approved_at, approved_by, loan_id::text,
rejected_at, rejected_by, rejection_reason, version`

func (r *ApplicationRepository) Insert(ctx context.Context, app *application.Application) error {
	doc, err := json.Marshal(app.Submission)
	if err != nil {
		return fmt.Errorf("encode application document: %w", err)
	}
	q := `
INSERT INTO applications (id, user_id, status, document, submitted_at, version)
VALUES ($1, $2, $3, $4::jsonb, $5, $6)
`
	_, err = r.pool.Exec(ctx, q, app.ID, app.UserID, string(app.Status), doc, app.SubmittedAt, app.Version)
	return err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := scanApplication(r.pool.QueryRow(ctx, q, id))
	if isNoMatch(err) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status application.Status, order application.SortOrder) ([]application.Application, error) {
	direction := "DESC"
	if order == application.SortAscending {
		direction = "ASC"
	}
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY submitted_at ` + direction + `, id`
	rows, err := r.pool.Query(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *app)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) Decide(ctx context.Context, id string, expected application.Status, t application.Transition) error {
	var q string
	var args []any
	switch t.Status {
	case application.StatusApproved:
		q = `
UPDATE applications
SET status = 'approved', approved_at = $3, approved_by = $4, loan_id = $5,
    version = version + 1, updated_at = NOW()
WHERE id = $1 AND status = $2
`
		args = []any{id, string(expected), t.DecidedAt, t.DecidedBy, t.LoanID}
	case application.StatusRejected:
		q = `
UPDATE applications
SET status = 'rejected', rejected_at = $3, rejected_by = $4, rejection_reason = $5,
    version = version + 1, updated_at = NOW()
WHERE id = $1 AND status = $2
`
		args = []any{id, string(expected), t.DecidedAt, t.DecidedBy, t.Reason}
	default:
		return fmt.Errorf("unsupported transition to %q", t.Status)
	}

	payload, err := json.Marshal(jobs.DecisionPayload{ApplicationID: id, Status: string(t.Status)})
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, q, args...)
	if isNoMatch(err) {
		return application.ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return application.ErrNotFound
		}
		return application.ErrAlreadyProcessed
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO outbox_jobs (topic, payload, status) VALUES ($1, $2::jsonb, 'pending')`,
		jobs.TopicApplicationDecided, payload,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		app                         application.Application
		status                      string
		doc                         []byte
		approvedBy, loanID          *string
		rejectedBy, rejectionReason *string
		approvedAt, rejectedAt      *time.Time
	)
	err := row.Scan(
		&app.ID, &app.UserID, &status, &doc, &app.SubmittedAt,
		&approvedAt, &approvedBy, &loanID,
		&rejectedAt, &rejectedBy, &rejectionReason, &app.Version,
	)
	if err != nil {
		return nil, err
	}
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &app.Submission); err != nil {
			return nil, fmt.Errorf("decode application %s: %w", app.ID, err)
		}
	}
	app.Status = application.Status(status)
	app.SubmittedAt = app.SubmittedAt.UTC()
	app.ApprovedAt = utcPtr(approvedAt)
	app.ApprovedBy = derefString(approvedBy)
	app.LoanID = derefString(loanID)
	app.RejectedAt = utcPtr(rejectedAt)
	app.RejectedBy = derefString(rejectedBy)
	app.RejectionReason = derefString(rejectionReason)
	return &app, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
