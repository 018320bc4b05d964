package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/underwriting"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/http/middleware"
)

type ApplicationHandler struct {
	service *underwriting.Service
}

func NewApplicationHandler(service *underwriting.Service) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Submit accepts the borrower's form state as-is. A signed-in caller is
// recorded as the owner.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body_too_large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_application_data"})
		return
	}

	var sub application.Submission
	if err := json.Unmarshal(body, &sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	var owner *string
	if uid, ok := middleware.UserID(c); ok {
		owner = &uid
	}
	id, err := h.service.Submit(c.Request.Context(), &sub, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Application submitted successfully!",
		"applicationId": id,
	})
}

func (h *ApplicationHandler) ListPending(c *gin.Context) {
	apps, err := h.service.GetPending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Approve takes the loan terms as the request body.
func (h *ApplicationHandler) Approve(c *gin.Context) {
	var terms map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&terms); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	res, err := h.service.Approve(c.Request.Context(), c.Param("id"), terms, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Application approved and loan created successfully",
		"loanId":        res.LoanID,
		"applicationId": res.ApplicationID,
	})
}

func (h *ApplicationHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.service.Reject(c.Request.Context(), c.Param("id"), req.Reason, c.GetString(middleware.ContextUserID)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application rejected successfully"})
}
