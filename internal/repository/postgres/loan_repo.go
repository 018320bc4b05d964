package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
)

// LoanRepository writes to the loans store. Amounts travel as numeric text so
// no precision is lost between decimal.Decimal and NUMERIC.
type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `
id::text, application_id, user_id, borrower, employment,
requested_amount::text, requested_purpose, original_loan_amount::text,
approved_amount::text, interest_rate::text, term_months, monthly_payment::text,
issue_date, maturity_date, end_date, created_at, created_by`

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	borrower, err := json.Marshal(l.Borrower)
	if err != nil {
		return fmt.Errorf("encode borrower: %w", err)
	}
	employment, err := json.Marshal(l.Employment)
	if err != nil {
		return fmt.Errorf("encode employment: %w", err)
	}

	q := `
INSERT INTO loans (
  id, application_id, user_id, borrower, employment,
  requested_amount, requested_purpose, original_loan_amount, approved_amount,
  interest_rate, term_months, monthly_payment, issue_date, maturity_date, end_date,
  created_at, created_by
) VALUES (
  $1, $2, $3, $4::jsonb, $5::jsonb,
  $6::numeric, $7, $8::numeric, $9::numeric,
  $10::numeric, $11, $12::numeric, $13, $14, $15,
  $16, $17
)`
	t := l.Terms
	_, err = r.pool.Exec(ctx, q,
		l.ID, l.ApplicationID, l.UserID, borrower, employment,
		t.RequestedAmount.String(), t.RequestedPurpose, t.OriginalLoanAmount.String(), t.ApprovedAmount.String(),
		t.InterestRate.String(), t.Term, t.MonthlyPayment.String(), t.IssueDate.Time, t.MaturityDate.Time, t.EndDate.Time,
		l.CreatedAt, l.CreatedBy,
	)
	if isUniqueViolation(err) {
		return application.ErrAlreadyProcessed
	}
	return err
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Loan, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loan.Loan, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE application_id = $1`
	return r.getOne(ctx, q, applicationID)
}

func (r *LoanRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	if isNoMatch(err) {
		return loan.ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return loan.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) getOne(ctx context.Context, q string, arg string) (*loan.Loan, error) {
	l, err := scanLoan(r.pool.QueryRow(ctx, q, arg))
	if isNoMatch(err) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var (
		l                                   loan.Loan
		borrower, employment                []byte
		requested, original, approved, rate string
		payment                             string
		issue, maturity, end                time.Time
	)
	err := row.Scan(
		&l.ID, &l.ApplicationID, &l.UserID, &borrower, &employment,
		&requested, &l.Terms.RequestedPurpose, &original,
		&approved, &rate, &l.Terms.Term, &payment,
		&issue, &maturity, &end, &l.CreatedAt, &l.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(borrower, &l.Borrower); err != nil {
		return nil, fmt.Errorf("decode borrower of loan %s: %w", l.ID, err)
	}
	if err := json.Unmarshal(employment, &l.Employment); err != nil {
		return nil, fmt.Errorf("decode employment of loan %s: %w", l.ID, err)
	}

	amounts := []struct {
		raw string
		dst *decimal.Decimal
	}{
		{requested, &l.Terms.RequestedAmount},
		{original, &l.Terms.OriginalLoanAmount},
		{approved, &l.Terms.ApprovedAmount},
		{rate, &l.Terms.InterestRate},
		{payment, &l.Terms.MonthlyPayment},
	}
	for _, a := range amounts {
		d, err := decimal.NewFromString(a.raw)
		if err != nil {
			return nil, fmt.Errorf("decode amount of loan %s: %w", l.ID, err)
		}
		*a.dst = d
	}

	l.Terms.IssueDate = application.NewDate(issue.Date())
	l.Terms.MaturityDate = application.NewDate(maturity.Date())
	l.Terms.EndDate = application.NewDate(end.Date())
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}
