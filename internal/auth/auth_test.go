package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/auth"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/repository/memory"
)

func TestJWTMintAndParse(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	tok, err := m.Mint(auth.Subject{UserID: "u1", Email: "a@b.com", Role: auth.RoleUnderwriter}, auth.TokenTypeAccess, 5*time.Minute)
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, auth.RoleUnderwriter, claims.Role)
	assert.Contains(t, claims.Permissions, "approve_loans")
}

func TestJWTRejectsWrongAudienceAndExpiry(t *testing.T) {
	m := auth.NewJWTManager("issuer", "aud", "secret")
	other := auth.NewJWTManager("issuer", "other", "secret")
	tok, err := other.Mint(auth.Subject{UserID: "u1"}, auth.TokenTypeAccess, time.Minute)
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.Error(t, err)

	expired, err := m.Mint(auth.Subject{UserID: "u1"}, auth.TokenTypeAccess, -time.Minute)
	require.NoError(t, err)
	_, err = m.Parse(expired)
	assert.Error(t, err)

	_, err = m.Parse("not-a-token")
	assert.Error(t, err)
}

func newService() *auth.Service {
	return auth.NewService(memory.NewUserRepository(), auth.NewJWTManager("i", "a", "k"),
		[]string{"Underwriter1@company.com"}, time.Hour)
}

func TestRegisterUnderwriterRequiresWhitelist(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "stranger@example.com", "hunter22", auth.RoleUnderwriter)
	assert.ErrorIs(t, err, auth.ErrEmailNotAllowed)

	res, err := svc.Register(ctx, "underwriter1@COMPANY.com", "hunter22", auth.RoleUnderwriter)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, auth.RoleUnderwriter, res.User.Role)

	_, err = svc.Register(ctx, "underwriter1@company.com", "other-pass", auth.RoleUnderwriter)
	assert.ErrorIs(t, err, db.ErrEmailTaken)
}

func TestLoginChecksPasswordAndRole(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "underwriter1@company.com", "correct-horse", auth.RoleUnderwriter)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "borrower@example.com", "borrow-pass", auth.RoleBorrower)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "underwriter1@company.com", "wrong", auth.RoleUnderwriter)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@company.com", "x", auth.RoleUnderwriter)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "borrower@example.com", "borrow-pass", auth.RoleUnderwriter)
	assert.ErrorIs(t, err, auth.ErrRoleRequired)

	res, err := svc.Login(ctx, "underwriter1@company.com", "correct-horse", auth.RoleUnderwriter)
	require.NoError(t, err)
	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "underwriter1@company.com", me.Email)
}

func TestAccessCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	auth.SetAccessCookie(rec, auth.CookieConfig{Secure: true}, "tok", time.Hour)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.AccessCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	rec = httptest.NewRecorder()
	auth.ClearAccessCookie(rec, auth.CookieConfig{})
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}
