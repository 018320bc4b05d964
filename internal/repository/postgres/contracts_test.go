package postgres

import (
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/jobs"
)

var (
	_ application.Repository             = (*ApplicationRepository)(nil)
	_ underwriting.ApplicationRepository = (*ApplicationRepository)(nil)
	_ jobs.ApplicationReader             = (*ApplicationRepository)(nil)
	_ loan.Repository                    = (*LoanRepository)(nil)
	_ underwriting.LoanRepository        = (*LoanRepository)(nil)
	_ jobs.OutboxRepository              = (*OutboxRepository)(nil)
)
