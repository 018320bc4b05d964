package loan

import (
	"fmt"
	"strings"
	"time"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/shopspring/decimal"
)

// FromApplication builds the loan record for an approved application. It is
// pure: app is only read, its status is ignored, and the result shares no
// memory with app or terms. Absent sections become zero values.
func FromApplication(app application.Application, terms application.LoanTerms, decidedBy string, now time.Time, id string) *Loan {
	src := app.Submission.Clone()

	personal := application.PersonalInfo{}
	if src.PersonalInfo != nil {
		personal = *src.PersonalInfo
	}

	employment := Employment{
		EducationLevel: personal.EducationLevel,
		Income:         []application.IncomeSource{},
	}
	if src.EducationInfo != nil {
		employment.EducationDetails = *src.EducationInfo
	}
	if src.IncomeInfo != nil && src.IncomeInfo.Sources != nil {
		employment.Income = src.IncomeInfo.Sources
	}
	if src.FinancialInfo != nil {
		employment.Savings = *src.FinancialInfo
	}

	requestedAmount, requestedPurpose := decimal.Zero, ""
	if src.LoanDetails != nil {
		requestedAmount = src.LoanDetails.LoanAmount
		requestedPurpose = src.LoanDetails.LoanPurpose
	}

	var userID *string
	if app.UserID != nil {
		v := *app.UserID
		userID = &v
	}

	return &Loan{
		ID:            id,
		ApplicationID: app.ID,
		UserID:        userID,
		Borrower: Borrower{
			FirstName:   personal.FirstName,
			LastName:    personal.LastName,
			PhoneNumber: personal.PhoneNumber,
			DateOfBirth: dateOfBirth(personal),
			Address: Address{
				Street:   personal.StreetAddress,
				AptSuite: personal.AptSuite,
				City:     personal.City,
				State:    personal.State,
				ZipCode:  personal.ZipCode,
			},
			HousingStatus: personal.HousingStatus,
		},
		Employment: employment,
		Terms: Terms{
			RequestedAmount:    requestedAmount,
			RequestedPurpose:   requestedPurpose,
			OriginalLoanAmount: terms.OriginalLoanAmount,
			ApprovedAmount:     terms.ApprovedAmount,
			InterestRate:       terms.InterestRate,
			Term:               terms.Term,
			MonthlyPayment:     terms.MonthlyPayment,
			IssueDate:          terms.IssueDate,
			MaturityDate:       terms.MaturityDate,
			EndDate:            terms.EndDate,
		},
		CreatedAt: now,
		CreatedBy: decidedBy,
	}
}

// dateOfBirth renders MM/DD/YYYY, or "" unless all three parts are present.
func dateOfBirth(p application.PersonalInfo) string {
	month := strings.TrimSpace(p.BirthMonth)
	day := strings.TrimSpace(p.BirthDay)
	year := strings.TrimSpace(p.BirthYear)
	if month == "" || day == "" || year == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", month, day, year)
}
