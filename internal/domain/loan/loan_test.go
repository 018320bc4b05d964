package loan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTerms() application.LoanTerms {
	return application.LoanTerms{
		ApprovedAmount:     decimal.NewFromInt(150),
		OriginalLoanAmount: decimal.NewFromInt(150),
		InterestRate:       decimal.RequireFromString("5.5"),
		Term:               48,
		MonthlyPayment:     decimal.RequireFromString("3.45"),
		IssueDate:          application.NewDate(2025, time.January, 15),
		MaturityDate:       application.NewDate(2029, time.January, 15),
		EndDate:            application.NewDate(2029, time.January, 15),
	}
}

func fullApplication() application.Application {
	owner := "borrower-7"
	return application.Application{
		ID:     "app-1",
		UserID: &owner,
		Status: application.StatusPending,
		Submission: application.Submission{
			PersonalInfo: &application.PersonalInfo{
				FirstName:      "Ada",
				LastName:       "Lovelace",
				BirthMonth:     "12",
				BirthDay:       "10",
				BirthYear:      "1990",
				StreetAddress:  "1 Main St",
				AptSuite:       "4B",
				City:           "Portola",
				State:          "CA",
				ZipCode:        "96122",
				HousingStatus:  "rent",
				PhoneNumber:    "5305550100",
				EducationLevel: "bachelors",
			},
			LoanDetails:   &application.LoanDetails{LoanAmount: decimal.NewFromInt(150), LoanPurpose: "car repair"},
			EducationInfo: &application.EducationInfo{SchoolName: "State U", GraduationYear: "2012"},
			IncomeInfo: &application.IncomeInfo{Sources: []application.IncomeSource{
				{ID: "s1", Type: application.IncomeEmployedSalary, Detail: application.SalaryIncome{Company: "Acme", AnnualIncome: "90000"}},
				{ID: "s2", Type: application.IncomeOther, Detail: application.OtherIncome{OtherIncomeType: "rental", YearlyAmount: "12000"}},
			}},
			FinancialInfo: &application.FinancialInfo{SavingsAmount: "5000", HasRecentLoans: true},
		},
	}
}

func TestFromApplicationMapsEverySection(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	l := FromApplication(fullApplication(), sampleTerms(), "uw-1", now, "loan-1")

	assert.Equal(t, "loan-1", l.ID)
	assert.Equal(t, "app-1", l.ApplicationID)
	require.NotNil(t, l.UserID)
	assert.Equal(t, "borrower-7", *l.UserID)
	assert.Equal(t, "12/10/1990", l.Borrower.DateOfBirth)
	assert.Equal(t, Address{Street: "1 Main St", AptSuite: "4B", City: "Portola", State: "CA", ZipCode: "96122"}, l.Borrower.Address)
	assert.Equal(t, "bachelors", l.Employment.EducationLevel)
	assert.Equal(t, "State U", l.Employment.EducationDetails.SchoolName)
	require.Len(t, l.Employment.Income, 2)
	assert.Equal(t, "Acme", l.Employment.Income[0].Detail.(application.SalaryIncome).Company)
	assert.True(t, l.Employment.Savings.HasRecentLoans)
	assert.Equal(t, "150", l.Terms.RequestedAmount.String())
	assert.Equal(t, "car repair", l.Terms.RequestedPurpose)
	assert.Equal(t, "150", l.Terms.ApprovedAmount.String())
	assert.Equal(t, 48, l.Terms.Term)
	assert.Equal(t, "2029-01-15", l.Terms.MaturityDate.String())
	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, "uw-1", l.CreatedBy)
}

func TestFromApplicationDefaultsAbsentSections(t *testing.T) {
	l := FromApplication(application.Application{ID: "bare"}, sampleTerms(), "uw-1", time.Now(), "loan-2")

	assert.Nil(t, l.UserID)
	assert.Equal(t, Borrower{}, l.Borrower)
	assert.Equal(t, "", l.Employment.EducationLevel)
	assert.Empty(t, l.Employment.Income)
	assert.NotNil(t, l.Employment.Income)
	assert.True(t, l.Terms.RequestedAmount.IsZero())
	assert.Equal(t, "", l.Terms.RequestedPurpose)

	body, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"income":[]`)
}

func TestFromApplicationPartialBirthDate(t *testing.T) {
	app := fullApplication()
	app.PersonalInfo.BirthDay = ""
	l := FromApplication(app, sampleTerms(), "uw", time.Now(), "loan")
	assert.Equal(t, "", l.Borrower.DateOfBirth)
}

func TestFromApplicationIsASnapshot(t *testing.T) {
	app := fullApplication()
	l := FromApplication(app, sampleTerms(), "uw", time.Now(), "loan")

	app.PersonalInfo.FirstName = "Changed"
	app.IncomeInfo.Sources[0] = application.IncomeSource{ID: "x", Type: application.IncomeOther, Detail: application.OtherIncome{}}
	app.IncomeInfo.Sources = append(app.IncomeInfo.Sources, application.IncomeSource{ID: "s3"})
	app.EducationInfo.SchoolName = "Other"
	app.FinancialInfo.SavingsAmount = "0"
	*app.UserID = "someone-else"

	assert.Equal(t, "Ada", l.Borrower.FirstName)
	assert.Equal(t, "s1", l.Employment.Income[0].ID)
	assert.Len(t, l.Employment.Income, 2)
	assert.Equal(t, "State U", l.Employment.EducationDetails.SchoolName)
	assert.Equal(t, "5000", l.Employment.Savings.SavingsAmount)
	assert.Equal(t, "borrower-7", *l.UserID)
}

func TestFromApplicationIgnoresStatus(t *testing.T) {
	app := fullApplication()
	app.Status = application.StatusRejected
	l := FromApplication(app, sampleTerms(), "uw", time.Now(), "loan")
	assert.Equal(t, "app-1", l.ApplicationID)
	assert.Equal(t, application.StatusRejected, app.Status)
}

func TestMonthlyPayment(t *testing.T) {
	assert.Equal(t, "860.66", MonthlyPayment(decimal.NewFromInt(10000), decimal.NewFromInt(6), 12).StringFixed(2))
	assert.Equal(t, "100.00", MonthlyPayment(decimal.NewFromInt(1200), decimal.Zero, 12).StringFixed(2))
	assert.True(t, MonthlyPayment(decimal.NewFromInt(1200), decimal.NewFromInt(5), 0).IsZero())
	assert.True(t, MonthlyPayment(decimal.NewFromInt(1000), decimal.NewFromFloat(1e300), 12).IsZero())
}

func TestQuote(t *testing.T) {
	q := Quote(QuoteInput{
		ApprovedAmount: decimal.NewFromInt(10000),
		InterestRate:   decimal.NewFromInt(6),
		Term:           12,
		IssueDate:      application.NewDate(2025, time.January, 15),
	})
	assert.Equal(t, "860.66", q.MonthlyPayment.StringFixed(2))
	assert.Equal(t, "2026-01-15", q.MaturityDate.String())
	assert.Equal(t, q.MaturityDate, q.EndDate)
}
