package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
)

type LoanRepository struct {
	mu            sync.Mutex
	items         map[string][]byte
	byApplication map[string]string
}

func NewLoanRepository() *LoanRepository {
	return &LoanRepository{
		items:         map[string][]byte{},
		byApplication: map[string]string{},
	}
}

// Loans are kept in their JSON form so callers never share memory with the
// stored record.
func (r *LoanRepository) Create(_ context.Context, l *loan.Loan) error {
	doc, err := json.Marshal(l)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byApplication[l.ApplicationID]; exists {
		return application.ErrAlreadyProcessed
	}
	r.items[l.ID] = doc
	r.byApplication[l.ApplicationID] = l.ID
	return nil
}

func (r *LoanRepository) GetByID(_ context.Context, id string) (*loan.Loan, error) {
	r.mu.Lock()
	doc, ok := r.items[id]
	r.mu.Unlock()
	if !ok {
		return nil, loan.ErrNotFound
	}
	return decodeLoan(doc)
}

func (r *LoanRepository) GetByApplicationID(ctx context.Context, applicationID string) (*loan.Loan, error) {
	r.mu.Lock()
	id, ok := r.byApplication[applicationID]
	r.mu.Unlock()
	if !ok {
		return nil, loan.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *LoanRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.items[id]
	if !ok {
		return loan.ErrNotFound
	}
	var head struct {
		ApplicationID string `json:"applicationId"`
	}
	if err := json.Unmarshal(doc, &head); err == nil && r.byApplication[head.ApplicationID] == id {
		delete(r.byApplication, head.ApplicationID)
	}
	delete(r.items, id)
	return nil
}

// Count reports the number of stored loans.
func (r *LoanRepository) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func decodeLoan(doc []byte) (*loan.Loan, error) {
	var l loan.Loan
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
