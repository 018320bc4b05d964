package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const MaxRejectionReasonLength = 1000

// RequiredTermFields lists the keys an approval must carry, in the order
// errors are reported.
var RequiredTermFields = []string{
	"approvedAmount",
	"interestRate",
	"term",
	"monthlyPayment",
	"issueDate",
	"maturityDate",
	"endDate",
}

// LoanTerms are underwriter-supplied terms that passed validation.
type LoanTerms struct {
	ApprovedAmount     decimal.Decimal
	OriginalLoanAmount decimal.Decimal
	InterestRate       decimal.Decimal
	Term               int
	MonthlyPayment     decimal.Decimal
	IssueDate          Date
	MaturityDate       Date
	EndDate            Date
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, format string, args ...any) {
	*f = append(*f, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidateLoanTerms checks a decoded approval body. raw is only read. Every
// problem found is returned in one *ValidationError.
func ValidateLoanTerms(raw map[string]any) (*LoanTerms, error) {
	var errs fieldErrors

	for _, key := range RequiredTermFields {
		if isMissing(raw[key]) {
			errs.add(key, "is required")
		}
	}

	terms := &LoanTerms{}
	numberField := func(key string, positive bool) decimal.Decimal {
		v := raw[key]
		if isMissing(v) {
			return decimal.Zero
		}
		d, err := toDecimal(v)
		if err != nil {
			errs.add(key, "must be a number")
			return decimal.Zero
		}
		switch {
		case positive && !d.IsPositive():
			errs.add(key, "must be greater than 0")
		case !positive && d.IsNegative():
			errs.add(key, "must be 0 or greater")
		}
		return d
	}

	terms.ApprovedAmount = numberField("approvedAmount", true)
	terms.InterestRate = numberField("interestRate", false)
	terms.MonthlyPayment = numberField("monthlyPayment", true)

	if v := raw["term"]; !isMissing(v) {
		d, err := toDecimal(v)
		switch {
		case err != nil:
			errs.add("term", "must be a number")
		case !d.IsPositive():
			errs.add("term", "must be greater than 0")
		case !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)):
			errs.add("term", "must be a whole number of months")
		default:
			terms.Term = int(d.IntPart())
		}
	}

	dateField := func(key string) (Date, bool) {
		v := raw[key]
		if isMissing(v) {
			return Date{}, false
		}
		s, ok := v.(string)
		if !ok {
			errs.add(key, "must be a valid date")
			return Date{}, false
		}
		d, err := ParseDate(s)
		if err != nil {
			errs.add(key, "must be a valid date")
			return Date{}, false
		}
		return d, true
	}

	issue, issueOK := dateField("issueDate")
	maturity, maturityOK := dateField("maturityDate")
	end, _ := dateField("endDate")
	if issueOK && maturityOK && !maturity.After(issue.Time) {
		errs.add("maturityDate", "must be after issueDate")
	}
	terms.IssueDate, terms.MaturityDate, terms.EndDate = issue, maturity, end

	terms.OriginalLoanAmount = terms.ApprovedAmount
	if v := raw["originalLoanAmount"]; !isMissing(v) {
		d, err := toDecimal(v)
		switch {
		case err != nil:
			errs.add("originalLoanAmount", "must be a number")
		case !d.IsPositive():
			errs.add("originalLoanAmount", "must be greater than 0")
		default:
			terms.OriginalLoanAmount = d
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return terms, nil
}

// ValidateRejectionReason returns the trimmed reason.
func ValidateRejectionReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return "", &ValidationError{Fields: []FieldError{{Field: "reason", Message: "is required"}}}
	}
	if utf8.RuneCountInString(trimmed) > MaxRejectionReasonLength {
		return "", &ValidationError{Fields: []FieldError{{
			Field:   "reason",
			Message: fmt.Sprintf("must be at most %d characters", MaxRejectionReasonLength),
		}}}
	}
	return trimmed, nil
}

func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	}
	return false
}

func toDecimal(v any) (decimal.Decimal, error) {
	d, err := parseDecimal(v)
	if err != nil {
		return decimal.Zero, err
	}
	if !WithinDecimalBounds(d) {
		return decimal.Zero, errors.New("number out of range")
	}
	return d, nil
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, fmt.Errorf("not a finite number")
		}
		return decimal.NewFromFloat(t), nil
	case float32:
		return decimal.NewFromFloat32(t), nil
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	case json.Number:
		return decimal.NewFromString(t.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(t))
	case decimal.Decimal:
		return t, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported type %T", v)
}
