package loan

import (
	"math"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/shopspring/decimal"
)

type QuoteInput struct {
	ApprovedAmount decimal.Decimal
	InterestRate   decimal.Decimal
	Term           int
	IssueDate      application.Date
}

type QuoteResult struct {
	MonthlyPayment decimal.Decimal  `json:"monthlyPayment"`
	MaturityDate   application.Date `json:"maturityDate"`
	EndDate        application.Date `json:"endDate"`
}

// Quote fills in the derived terms for a fully amortizing loan with monthly
// payments. InterestRate is an annual percentage.
func Quote(in QuoteInput) QuoteResult {
	maturity := in.IssueDate.AddMonths(in.Term)
	return QuoteResult{
		MonthlyPayment: MonthlyPayment(in.ApprovedAmount, in.InterestRate, in.Term),
		MaturityDate:   maturity,
		EndDate:        maturity,
	}
}

// MonthlyPayment is P*r*(1+r)^n / ((1+r)^n - 1) with r the monthly rate,
// or P/n for an interest-free loan, rounded to cents. Inputs whose payment
// is not a finite number yield zero.
func MonthlyPayment(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(months))
	if annualRate.IsZero() {
		return principal.Div(n).Round(2)
	}
	r := annualRate.InexactFloat64() / 100 / 12
	growth := math.Pow(1+r, float64(months))
	payment := principal.InexactFloat64() * r * growth / (growth - 1)
	if math.IsNaN(payment) || math.IsInf(payment, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(payment).Round(2)
}
