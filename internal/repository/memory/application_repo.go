// Package memory holds process-local repositories used by tests and by the
// api binary when STORE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
)

type ApplicationRepository struct {
	mu    sync.Mutex
	items map[string]*application.Application
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{items: map[string]*application.Application{}}
}

func (r *ApplicationRepository) Insert(_ context.Context, app *application.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[app.ID]; exists {
		return application.ErrAlreadyProcessed
	}
	r.items[app.ID] = app.Clone()
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return nil, application.ErrNotFound
	}
	return app.Clone(), nil
}

func (r *ApplicationRepository) ListByStatus(_ context.Context, status application.Status, order application.SortOrder) ([]application.Application, error) {
	r.mu.Lock()
	out := make([]application.Application, 0, len(r.items))
	for _, app := range r.items {
		if app.Status == status {
			out = append(out, *app.Clone())
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		if order == application.SortAscending {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *ApplicationRepository) Decide(_ context.Context, id string, expected application.Status, t application.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.items[id]
	if !ok {
		return application.ErrNotFound
	}
	if app.Status != expected {
		return application.ErrAlreadyProcessed
	}
	app.Apply(t)
	return nil
}
