package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
)

const (
	RoleUnderwriter = "underwriter"
	RoleBorrower    = "borrower"

	TokenTypeAccess = "access"
)

var (
	ErrEmailNotAllowed    = errors.New("email not authorized for underwriter access")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRoleRequired       = errors.New("account lacks the required role")
)

var underwriterPermissions = []string{
	"view_applications",
	"approve_loans",
	"reject_loans",
	"access_underwriter_portal",
}

// PermissionsFor lists the permissions embedded in tokens for role.
func PermissionsFor(role string) []string {
	if role == RoleUnderwriter {
		out := make([]string, len(underwriterPermissions))
		copy(out, underwriterPermissions)
		return out
	}
	return nil
}

type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, userID string) (*db.User, error)
}

type Service struct {
	repo       Repository
	jwt        *JWTManager
	whitelist  map[string]struct{}
	accessTTL  time.Duration
	bcryptCost int
}

type AuthResult struct {
	AccessToken string
	User        *db.User
}

func NewService(repo Repository, jwt *JWTManager, underwriterEmails []string, accessTTL time.Duration) *Service {
	allowed := make(map[string]struct{}, len(underwriterEmails))
	for _, e := range underwriterEmails {
		allowed[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Service{
		repo:       repo,
		jwt:        jwt,
		whitelist:  allowed,
		accessTTL:  accessTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// IsWhitelisted reports whether email may hold an underwriter account.
func (s *Service) IsWhitelisted(email string) bool {
	_, ok := s.whitelist[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Register creates an account. Underwriter accounts are limited to the
// configured email list.
func (s *Service) Register(ctx context.Context, email, password, role string) (*AuthResult, error) {
	if role == RoleUnderwriter && !s.IsWhitelisted(email) {
		return nil, ErrEmailNotAllowed
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, email, string(hash), role)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login checks the password and, when requiredRole is set, the account role.
func (s *Service) Login(ctx context.Context, email, password, requiredRole string) (*AuthResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if requiredRole != "" && user.Role != requiredRole {
		return nil, ErrRoleRequired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *Service) Me(ctx context.Context, userID string) (*db.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) issue(user *db.User) (*AuthResult, error) {
	token, err := s.jwt.Mint(Subject{UserID: user.ID, Email: user.Email, Role: user.Role}, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: token, User: user}, nil
}
