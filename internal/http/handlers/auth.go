package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/auth"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/http/middleware"
)

type AuthHandler struct {
	authService *auth.Service
	cookieCfg   auth.CookieConfig
	logger      *zap.Logger
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewAuthHandler(authService *auth.Service, cookieCfg auth.CookieConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{authService: authService, cookieCfg: cookieCfg, logger: logger}
}

func (h *AuthHandler) SignupUnderwriter(c *gin.Context) { h.signup(c, auth.RoleUnderwriter) }
func (h *AuthHandler) SignupBorrower(c *gin.Context)    { h.signup(c, auth.RoleBorrower) }
func (h *AuthHandler) LoginUnderwriter(c *gin.Context)  { h.login(c, auth.RoleUnderwriter) }
func (h *AuthHandler) LoginBorrower(c *gin.Context)     { h.login(c, auth.RoleBorrower) }

func (h *AuthHandler) signup(c *gin.Context, role string) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, role)
	switch {
	case errors.Is(err, auth.ErrEmailNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": "email_not_authorized"})
		return
	case errors.Is(err, db.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_taken"})
		return
	case err != nil:
		h.logger.Error("signup failed", zap.String("role", role), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "signup_failed"})
		return
	}

	h.logger.Info("account created", zap.String("user_id", res.User.ID), zap.String("role", role))
	auth.SetAccessCookie(c.Writer, h.cookieCfg, res.AccessToken, h.authService.AccessTTL())
	c.JSON(http.StatusCreated, gin.H{"token": res.AccessToken, "user": userBody(res.User)})
}

func (h *AuthHandler) login(c *gin.Context, role string) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, role)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	case errors.Is(err, auth.ErrRoleRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "role_required", "role": role})
		return
	case err != nil:
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login_failed"})
		return
	}

	auth.SetAccessCookie(c.Writer, h.cookieCfg, res.AccessToken, h.authService.AccessTTL())
	c.JSON(http.StatusOK, gin.H{"token": res.AccessToken, "user": userBody(res.User)})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	auth.ClearAccessCookie(c.Writer, h.cookieCfg)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.authService.Me(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userBody(user)})
}

func userBody(u *db.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"role":        u.Role,
		"permissions": auth.PermissionsFor(u.Role),
	}
}
