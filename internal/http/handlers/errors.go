package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/loan"
)

// writeError maps orchestrator and store failures onto status codes.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var partial *application.PartialCommitError
	if errors.As(err, &partial) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         "partial_commit",
			"applicationId": partial.ApplicationID,
			"loanId":        partial.LoanID,
		})
		return
	}
	var invalid *application.ValidationError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": invalid.Fields})
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "application_not_found"})
	case errors.Is(err, loan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "loan_not_found"})
	case errors.Is(err, application.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "already_processed"})
	case errors.Is(err, application.ErrEmptySubmission):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_application_data"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
