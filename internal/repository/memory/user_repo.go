package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/db"
)

type UserRepository struct {
	mu      sync.Mutex
	byID    map[string]db.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[string]db.User{}, byEmail: map[string]string{}}
}

func (r *UserRepository) CreateUser(_ context.Context, email, passwordHash, role string) (*db.User, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[key]; exists {
		return nil, db.ErrEmailTaken
	}
	now := time.Now().UTC()
	u := db.User{ID: uuid.NewString(), Email: key, PasswordHash: passwordHash, Role: role, CreatedAt: now, UpdatedAt: now}
	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return &u, nil
}

func (r *UserRepository) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) GetUserByID(_ context.Context, userID string) (*db.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return &u, nil
}
