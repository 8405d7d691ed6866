package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
)

type mockTodoRepository struct {
	getFn    func(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	createFn func(ctx context.Context, todo *models.TodoItem) error
}

func (m *mockTodoRepository) Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, repositories.ErrNotFound
}

func (m *mockTodoRepository) Create(ctx context.Context, todo *models.TodoItem) error {
	if m.createFn != nil {
		return m.createFn(ctx, todo)
	}
	return nil
}

func (m *mockTodoRepository) Ping(context.Context) error { return nil }

type mockTodoCache struct {
	getFn func(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	setFn func(ctx context.Context, todo *models.TodoItem, ttl time.Duration) error
}

func (m *mockTodoCache) GetTodo(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTodoCache) SetTodo(ctx context.Context, todo *models.TodoItem, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, todo, ttl)
	}
	return nil
}

type publisherFunc func(ctx context.Context, event models.TodoEvent) error

func (f publisherFunc) Publish(ctx context.Context, event models.TodoEvent) error { return f(ctx, event) }

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func TestTodoService_Get(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		id := uuid.New()
		cached := &models.TodoItem{ID: id, Title: "cached"}

		repo := &mockTodoRepository{
			getFn: func(context.Context, uuid.UUID) (*models.TodoItem, error) {
				t.Fatal("repository should not be queried on cache hit")
				return nil, nil
			},
		}
		cache := &mockTodoCache{
			getFn: func(context.Context, uuid.UUID) (*models.TodoItem, error) { return cached, nil },
		}

		svc := NewTodoService(repo, WithCache(cache, time.Minute), WithLogger(quietLogger()))
		got, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Same(t, cached, got)
	})

	t.Run("cache miss reads repository and fills cache", func(t *testing.T) {
		id := uuid.New()
		stored := &models.TodoItem{ID: id, Title: "stored"}
		var setTTL time.Duration

		repo := &mockTodoRepository{
			getFn: func(_ context.Context, got uuid.UUID) (*models.TodoItem, error) {
				assert.Equal(t, id, got)
				return stored, nil
			},
		}
		cache := &mockTodoCache{
			setFn: func(_ context.Context, todo *models.TodoItem, ttl time.Duration) error {
				assert.Same(t, stored, todo)
				setTTL = ttl
				return nil
			},
		}

		svc := NewTodoService(repo, WithCache(cache, 42*time.Second), WithLogger(quietLogger()))
		got, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "stored", got.Title)
		assert.Equal(t, 42*time.Second, setTTL)
	})

	t.Run("cache failure falls back to repository", func(t *testing.T) {
		id := uuid.New()
		repo := &mockTodoRepository{
			getFn: func(context.Context, uuid.UUID) (*models.TodoItem, error) {
				return &models.TodoItem{ID: id, Title: "from db"}, nil
			},
		}
		cache := &mockTodoCache{
			getFn: func(context.Context, uuid.UUID) (*models.TodoItem, error) {
				return nil, errors.New("redis down")
			},
			setFn: func(context.Context, *models.TodoItem, time.Duration) error {
				return errors.New("redis down")
			},
		}

		svc := NewTodoService(repo, WithCache(cache, 0), WithLogger(quietLogger()))
		got, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "from db", got.Title)
	})

	t.Run("not found passes through", func(t *testing.T) {
		svc := NewTodoService(&mockTodoRepository{}, WithLogger(quietLogger()))
		got, err := svc.Get(context.Background(), uuid.New())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestTodoService_Create(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 5, 6, 7, 123456789, time.FixedZone("CET", 3600))

	t.Run("stamps creation time and publishes event", func(t *testing.T) {
		id := uuid.New()
		desc := "details"
		var persisted *models.TodoItem
		var published []models.TodoEvent

		repo := &mockTodoRepository{
			createFn: func(_ context.Context, todo *models.TodoItem) error {
				persisted = todo
				return nil
			},
		}
		events := publisherFunc(func(_ context.Context, e models.TodoEvent) error {
			published = append(published, e)
			return nil
		})

		svc := NewTodoService(repo,
			WithEvents(events),
			WithLogger(quietLogger()),
			WithClock(func() time.Time { return fixed }),
		)

		got, err := svc.Create(context.Background(), models.CreateTodoRequest{ID: id, Title: "Write docs", Description: &desc})
		require.NoError(t, err)
		assert.Same(t, persisted, got)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "Write docs", got.Title)
		assert.Equal(t, time.UTC, got.CreatedAtUtc.Location())
		assert.True(t, got.CreatedAtUtc.Equal(fixed.Truncate(time.Microsecond)))

		require.Len(t, published, 1)
		assert.Equal(t, models.EventTodoCreated, published[0].Type)
		assert.Equal(t, id, published[0].ID)
	})

	t.Run("conflict is returned and nothing is published", func(t *testing.T) {
		repo := &mockTodoRepository{
			createFn: func(context.Context, *models.TodoItem) error { return repositories.ErrConflict },
		}
		events := publisherFunc(func(context.Context, models.TodoEvent) error {
			t.Fatal("no event expected on conflict")
			return nil
		})

		svc := NewTodoService(repo, WithEvents(events), WithLogger(quietLogger()))
		got, err := svc.Create(context.Background(), models.CreateTodoRequest{ID: uuid.New(), Title: "dup"})
		assert.ErrorIs(t, err, repositories.ErrConflict)
		assert.Nil(t, got)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		events := publisherFunc(func(context.Context, models.TodoEvent) error { return errors.New("broker unavailable") })

		svc := NewTodoService(&mockTodoRepository{}, WithEvents(events), WithLogger(logger))
		got, err := svc.Create(context.Background(), models.CreateTodoRequest{ID: uuid.New(), Title: "ok"})
		require.NoError(t, err)
		assert.NotNil(t, got)
		require.NotNil(t, hook.LastEntry())
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("rejects invalid input before touching the store", func(t *testing.T) {
		repo := &mockTodoRepository{
			createFn: func(context.Context, *models.TodoItem) error {
				t.Fatal("repository should not be called")
				return nil
			},
		}
		svc := NewTodoService(repo, WithLogger(quietLogger()))
		long := strings.Repeat("d", models.MaxDescriptionLength+1)

		cases := map[string]models.CreateTodoRequest{
			"empty title":      {ID: uuid.New(), Title: ""},
			"long title":       {ID: uuid.New(), Title: strings.Repeat("t", models.MaxTitleLength+1)},
			"long description": {ID: uuid.New(), Title: "ok", Description: &long},
			"nil id":           {Title: "ok"},
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.Create(context.Background(), req)
				assert.ErrorIs(t, err, ErrValidation)
			})
		}
	})
}
