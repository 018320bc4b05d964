package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanDecide reports whether an underwriter decision may be applied.
func (s Status) CanDecide() bool {
	return s == StatusPending
}

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

type PersonalInfo struct {
	FirstName          string `json:"firstName,omitempty"`
	LastName           string `json:"lastName,omitempty"`
	Suffix             string `json:"suffix,omitempty"`
	BirthMonth         string `json:"birthMonth,omitempty"`
	BirthDay           string `json:"birthDay,omitempty"`
	BirthYear          string `json:"birthYear,omitempty"`
	StreetAddress      string `json:"streetAddress,omitempty"`
	AptSuite           string `json:"aptSuite,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	ZipCode            string `json:"zipCode,omitempty"`
	HousingStatus      string `json:"housingStatus,omitempty"`
	PhoneNumber        string `json:"phoneNumber,omitempty"`
	TextUpdatesConsent bool   `json:"textUpdatesConsent"`
	EducationLevel     string `json:"educationLevel,omitempty"`
}

type LoanDetails struct {
	LoanPurpose string          `json:"loanPurpose,omitempty"`
	LoanAmount  decimal.Decimal `json:"loanAmount"`
}

// UnmarshalJSON accepts the requested amount as a number, a numeric string
// or a blank value. Anything unparseable is kept as zero because submissions
// are accepted as entered.
func (d *LoanDetails) UnmarshalJSON(b []byte) error {
	var raw struct {
		LoanPurpose string          `json:"loanPurpose"`
		LoanAmount  json.RawMessage `json:"loanAmount"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.LoanPurpose = raw.LoanPurpose
	d.LoanAmount = lenientDecimal(raw.LoanAmount)
	return nil
}

func lenientDecimal(raw json.RawMessage) decimal.Decimal {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !WithinDecimalBounds(v) {
		return decimal.Zero
	}
	return v
}

const (
	maxDecimalExponent = 18
	maxDecimalDigits   = 30
)

// WithinDecimalBounds reports whether d has a small enough exponent and
// coefficient to be compared, rescaled and printed cheaply.
func WithinDecimalBounds(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return false
	}
	return d.NumDigits() <= maxDecimalDigits
}

type EducationInfo struct {
	LastEnrolledYear string `json:"lastEnrolledYear,omitempty"`
	SchoolName       string `json:"schoolName,omitempty"`
	GraduationYear   string `json:"graduationYear,omitempty"`
	AreaOfStudy      string `json:"areaOfStudy,omitempty"`
}

type IncomeInfo struct {
	Sources []IncomeSource `json:"sources"`
}

type FinancialInfo struct {
	SavingsAmount          string `json:"savingsAmount,omitempty"`
	InvestmentAmount       string `json:"investmentAmount,omitempty"`
	HasRecentLoans         bool   `json:"hasRecentLoans"`
	VehicleOwnershipStatus string `json:"vehicleOwnershipStatus,omitempty"`
	VehicleMileage         string `json:"vehicleMileage,omitempty"`
}

type AgreementInfo struct {
	AgreedToTerms bool `json:"agreedToTerms"`
}

// Submission is the borrower-entered part of an application. Every section
// is optional.
type Submission struct {
	PersonalInfo  *PersonalInfo  `json:"personalInfo,omitempty"`
	LoanDetails   *LoanDetails   `json:"loanDetails,omitempty"`
	EducationInfo *EducationInfo `json:"educationInfo,omitempty"`
	IncomeInfo    *IncomeInfo    `json:"incomeInfo,omitempty"`
	FinancialInfo *FinancialInfo `json:"financialInfo,omitempty"`
	AgreementInfo *AgreementInfo `json:"agreementInfo,omitempty"`
}

type Application struct {
	ID string `json:"id"`
	Submission
	UserID      *string   `json:"userId"`
	SubmittedAt time.Time `json:"submittedAt"`
	Status      Status    `json:"status"`

	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	LoanID     string     `json:"loanId,omitempty"`

	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`

	Version int64 `json:"version"`
}

// Transition is the patch written when a pending application is decided.
type Transition struct {
	Status    Status
	DecidedAt time.Time
	DecidedBy string
	LoanID    string
	Reason    string
}

type Repository interface {
	Insert(ctx context.Context, app *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	ListByStatus(ctx context.Context, status Status, order SortOrder) ([]Application, error)
	// Decide applies t only while the stored status still equals expected.
	Decide(ctx context.Context, id string, expected Status, t Transition) error
}

// Clone returns a deep copy that shares no memory with a.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	out := *a
	out.Submission = a.Submission.Clone()
	out.UserID = cloneString(a.UserID)
	out.ApprovedAt = cloneTime(a.ApprovedAt)
	out.RejectedAt = cloneTime(a.RejectedAt)
	return &out
}

func (s Submission) Clone() Submission {
	out := Submission{}
	if s.PersonalInfo != nil {
		v := *s.PersonalInfo
		out.PersonalInfo = &v
	}
	if s.LoanDetails != nil {
		v := *s.LoanDetails
		out.LoanDetails = &v
	}
	if s.EducationInfo != nil {
		v := *s.EducationInfo
		out.EducationInfo = &v
	}
	if s.IncomeInfo != nil {
		out.IncomeInfo = &IncomeInfo{Sources: CloneIncomeSources(s.IncomeInfo.Sources)}
	}
	if s.FinancialInfo != nil {
		v := *s.FinancialInfo
		out.FinancialInfo = &v
	}
	if s.AgreementInfo != nil {
		v := *s.AgreementInfo
		out.AgreementInfo = &v
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
