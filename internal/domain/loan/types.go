package loan

import (
	"context"
	"errors"
	"time"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("loan not found")

type Address struct {
	Street   string `json:"street"`
	AptSuite string `json:"aptSuite"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

type Borrower struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	PhoneNumber   string  `json:"phoneNumber"`
	DateOfBirth   string  `json:"dateOfBirth"`
	Address       Address `json:"address"`
	HousingStatus string  `json:"housingStatus"`
}

type Employment struct {
	EducationLevel   string                     `json:"educationLevel"`
	EducationDetails application.EducationInfo  `json:"educationDetails"`
	Income           []application.IncomeSource `json:"income"`
	Savings          application.FinancialInfo  `json:"savings"`
}

type Terms struct {
	RequestedAmount    decimal.Decimal  `json:"requestedAmount"`
	RequestedPurpose   string           `json:"requestedPurpose"`
	OriginalLoanAmount decimal.Decimal  `json:"originalLoanAmount"`
	ApprovedAmount     decimal.Decimal  `json:"approvedAmount"`
	InterestRate       decimal.Decimal  `json:"interestRate"`
	Term               int              `json:"term"`
	MonthlyPayment     decimal.Decimal  `json:"monthlyPayment"`
	IssueDate          application.Date `json:"issueDate"`
	MaturityDate       application.Date `json:"maturityDate"`
	EndDate            application.Date `json:"endDate"`
}

// Loan is the financial record created when an application is approved. Its
// borrower and employment sections are copies taken at approval time.
type Loan struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"applicationId"`
	UserID        *string    `json:"userId"`
	Borrower      Borrower   `json:"borrower"`
	Employment    Employment `json:"employment"`
	Terms         Terms      `json:"loan"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy"`
}

type Repository interface {
	// Create fails with application.ErrAlreadyProcessed when a loan already
	// exists for the same application.
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id string) (*Loan, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Loan, error)
	Delete(ctx context.Context, id string) error
}
