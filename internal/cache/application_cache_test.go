package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunterportola/underwriter-portal-fullstack/internal/cache"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/domain/application"
	"github.com/hunterportola/underwriter-portal-fullstack/internal/repository/memory"
)

func setup(t *testing.T) (*miniredis.Miniredis, *memory.ApplicationRepository, *cache.ApplicationRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := memory.NewApplicationRepository()
	return mr, inner, cache.NewApplicationRepository(inner, client, time.Minute, nil)
}

func insert(t *testing.T, repo application.Repository, id string) {
	t.Helper()
	require.NoError(t, repo.Insert(context.Background(), &application.Application{
		ID:          id,
		Status:      application.StatusPending,
		SubmittedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Submission: application.Submission{
			PersonalInfo: &application.PersonalInfo{FirstName: "Ada"},
		},
	}))
}

func TestPendingApplicationsAreNotCached(t *testing.T) {
	mr, _, repo := setup(t)
	insert(t, repo, "app-1")

	app, err := repo.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, app.Status)
	assert.False(t, mr.Exists("application:app-1"))
}

func TestDecidedApplicationIsCachedAfterRead(t *testing.T) {
	mr, _, repo := setup(t)
	ctx := context.Background()
	insert(t, repo, "app-1")

	require.NoError(t, repo.Decide(ctx, "app-1", application.StatusPending, application.Transition{
		Status:    application.StatusRejected,
		DecidedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		DecidedBy: "uw-1",
		Reason:    "insufficient income",
	}))
	assert.False(t, mr.Exists("application:app-1"))

	app, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, app.Status)
	assert.True(t, mr.Exists("application:app-1"))
	assert.Equal(t, time.Minute, mr.TTL("application:app-1"))

	cached, err := repo.GetByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, "insufficient income", cached.RejectionReason)
	assert.Equal(t, "Ada", cached.PersonalInfo.FirstName)
}

func TestCorruptEntryFallsBackToStore(t *testing.T) {
	mr, _, repo := setup(t)
	insert(t, repo, "app-1")
	require.NoError(t, mr.Set("application:app-1", "{not json"))

	app, err := repo.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.False(t, mr.Exists("application:app-1"))
}

func TestRedisOutageFallsBackToStore(t *testing.T) {
	mr, _, repo := setup(t)
	insert(t, repo, "app-1")
	mr.Close()

	app, err := repo.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, application.ErrNotFound)
}
