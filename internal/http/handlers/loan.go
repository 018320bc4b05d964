package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	loandomain "github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
)

type LoanHandler struct {
	loanService *loandomain.Service
}

func NewLoanHandler(loanService *loandomain.Service) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

type quoteRequest struct {
	ApprovedAmount float64  `json:"approvedAmount" validate:"gt=0,lte=1000000000000"`
	InterestRate   *float64 `json:"interestRate" validate:"required,gte=0,lte=100"`
	Term           int      `json:"term" validate:"gt=0,lte=600"`
	IssueDate      string   `json:"issueDate" validate:"required,datetime=2006-01-02"`
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	l, err := h.loanService.GetLoan(c.Request.Context(), c.Param("loanId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *LoanHandler) GetApplicationLoan(c *gin.Context) {
	l, err := h.loanService.GetByApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// Quote derives the payment and dates an underwriter would enter on approval.
func (h *LoanHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if !bindJSON(c, &req) {
		return
	}
	issue, err := application.ParseDate(req.IssueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": []application.FieldError{
			{Field: "issueDate", Message: "must be a valid date"},
		}})
		return
	}

	c.JSON(http.StatusOK, loandomain.Quote(loandomain.QuoteInput{
		ApprovedAmount: decimal.NewFromFloat(req.ApprovedAmount),
		InterestRate:   decimal.NewFromFloat(*req.InterestRate),
		Term:           req.Term,
		IssueDate:      issue,
	}))
}
