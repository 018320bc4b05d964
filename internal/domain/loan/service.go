package loan

import (
	"context"
	"strings"
)

// Service exposes read access to created loans.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetLoan(ctx context.Context, id string) (*Loan, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByApplication(ctx context.Context, applicationID string) (*Loan, error) {
	if strings.TrimSpace(applicationID) == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByApplicationID(ctx, applicationID)
}
