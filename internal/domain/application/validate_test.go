package application

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() map[string]any {
	return map[string]any{
		"approvedAmount": 150.0,
		"interestRate":   5.5,
		"term":           48.0,
		"monthlyPayment": 3.45,
		"issueDate":      "2025-01-15",
		"maturityDate":   "2029-01-15",
		"endDate":        "2029-01-15",
	}
}

func fieldNames(err error) []string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestValidateLoanTermsAcceptsValidInput(t *testing.T) {
	terms, err := ValidateLoanTerms(validTerms())
	require.NoError(t, err)

	assert.Equal(t, "150", terms.ApprovedAmount.String())
	assert.Equal(t, "150", terms.OriginalLoanAmount.String())
	assert.Equal(t, "5.5", terms.InterestRate.String())
	assert.Equal(t, 48, terms.Term)
	assert.Equal(t, "3.45", terms.MonthlyPayment.String())
	assert.Equal(t, "2025-01-15", terms.IssueDate.String())
	assert.Equal(t, "2029-01-15", terms.MaturityDate.String())
	assert.Equal(t, "2029-01-15", terms.EndDate.String())
}

func TestValidateLoanTermsReportsEveryMissingField(t *testing.T) {
	_, err := ValidateLoanTerms(map[string]any{})
	require.Error(t, err)
	assert.Equal(t, RequiredTermFields, fieldNames(err))

	raw := validTerms()
	delete(raw, "term")
	raw["endDate"] = "   "
	raw["interestRate"] = nil
	_, err = ValidateLoanTerms(raw)
	assert.Equal(t, []string{"interestRate", "term", "endDate"}, fieldNames(err))
}

func TestValidateLoanTermsDoesNotMutateInput(t *testing.T) {
	raw := validTerms()
	raw["approvedAmount"] = "-1"
	before := map[string]any{}
	for k, v := range raw {
		before[k] = v
	}
	_, err := ValidateLoanTerms(raw)
	require.Error(t, err)
	assert.Equal(t, before, raw)
}

func TestValidateLoanTermsNumericRules(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value any
		ok    bool
	}{
		{"zero amount", "approvedAmount", 0.0, false},
		{"negative amount", "approvedAmount", -5.0, false},
		{"string amount", "approvedAmount", "2500.50", true},
		{"garbage amount", "approvedAmount", "lots", false},
		{"bool amount", "approvedAmount", true, false},
		{"zero rate", "interestRate", 0.0, true},
		{"negative rate", "interestRate", -0.1, false},
		{"zero term", "term", 0.0, false},
		{"fractional term", "term", 12.5, false},
		{"string term", "term", "36", true},
		{"zero payment", "monthlyPayment", "0", false},
		{"huge exponent term", "term", json.Number("1e400000000"), false},
		{"huge exponent amount", "approvedAmount", "1e400000000", false},
		{"tiny exponent rate", "interestRate", "1e-400000000", false},
		{"oversized float amount", "approvedAmount", 1e300, false},
		{"long coefficient payment", "monthlyPayment", strings.Repeat("9", 40), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validTerms()
			raw[tc.key] = tc.value
			_, err := ValidateLoanTerms(raw)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, []string{tc.key}, fieldNames(err))
		})
	}
}

func TestValidateLoanTermsDateOrdering(t *testing.T) {
	raw := validTerms()
	raw["issueDate"] = "2029-01-15"
	raw["maturityDate"] = "2025-01-15"
	_, err := ValidateLoanTerms(raw)
	assert.Equal(t, []string{"maturityDate"}, fieldNames(err))

	raw["maturityDate"] = "2029-01-15"
	_, err = ValidateLoanTerms(raw)
	assert.Equal(t, []string{"maturityDate"}, fieldNames(err), "equal dates must fail")

	raw["maturityDate"] = "2029-01-16T00:00:00Z"
	_, err = ValidateLoanTerms(raw)
	assert.NoError(t, err)
}

func TestValidateLoanTermsRejectsBadDates(t *testing.T) {
	raw := validTerms()
	raw["issueDate"] = "2025-02-30"
	raw["endDate"] = 20290115.0
	_, err := ValidateLoanTerms(raw)
	assert.Equal(t, []string{"issueDate", "endDate"}, fieldNames(err))
}

func TestValidateLoanTermsOriginalLoanAmount(t *testing.T) {
	raw := validTerms()
	raw["originalLoanAmount"] = 200.0
	terms, err := ValidateLoanTerms(raw)
	require.NoError(t, err)
	assert.Equal(t, "200", terms.OriginalLoanAmount.String())

	raw["originalLoanAmount"] = -1.0
	_, err = ValidateLoanTerms(raw)
	assert.Equal(t, []string{"originalLoanAmount"}, fieldNames(err))
}

func TestValidateRejectionReason(t *testing.T) {
	_, err := ValidateRejectionReason("")
	assert.Equal(t, []string{"reason"}, fieldNames(err))

	_, err = ValidateRejectionReason(" \n\t ")
	assert.Equal(t, []string{"reason"}, fieldNames(err))

	_, err = ValidateRejectionReason(strings.Repeat("x", MaxRejectionReasonLength+1))
	assert.Equal(t, []string{"reason"}, fieldNames(err))

	got, err := ValidateRejectionReason("  " + strings.Repeat("é", MaxRejectionReasonLength) + "  ")
	require.NoError(t, err)
	assert.Equal(t, MaxRejectionReasonLength, len([]rune(got)))
}
