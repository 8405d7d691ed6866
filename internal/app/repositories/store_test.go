package repositories_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
	"github.com/chen-kiso-golan/TodoApp/internal/testutil"
)

func ptr(s string) *string { return &s }

// stores returns every TodoRepository implementation to check. Postgres runs
// only when TODO_TEST_POSTGRES_DSN points at a reachable database.
func stores(t *testing.T) map[string]func(t *testing.T) repositories.TodoRepository {
	t.Helper()
	all := map[string]func(t *testing.T) repositories.TodoRepository{
		"sqlite": func(t *testing.T) repositories.TodoRepository { return testutil.NewTestRepo(t) },
	}

	dsn := os.Getenv("TODO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Log("TODO_TEST_POSTGRES_DSN not set, skipping postgres")
		return all
	}
	all["postgres"] = func(t *testing.T) repositories.TodoRepository {
		repo, err := repositories.NewPostgresTodoRepo(dsn)
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	}
	return all
}

func forEachStore(t *testing.T, fn func(t *testing.T, repo repositories.TodoRepository)) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, open(t))
		})
	}
}

func TestTodoRepository_CreateAndGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		ctx := context.Background()
		todo := &models.TodoItem{
			ID:           uuid.New(),
			Title:        "Buy milk",
			Description:  ptr("2 litres"),
			CreatedAtUtc: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, repo.Create(ctx, todo))

		got, err := repo.Get(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo.ID, got.ID)
		assert.Equal(t, "Buy milk", got.Title)
		require.NotNil(t, got.Description)
		assert.Equal(t, "2 litres", *got.Description)
		assert.True(t, todo.CreatedAtUtc.Equal(got.CreatedAtUtc), "stored %v, got %v", todo.CreatedAtUtc, got.CreatedAtUtc)
		assert.Equal(t, time.UTC, got.CreatedAtUtc.Location())
	})
}

func TestTodoRepository_NilDescription(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		ctx := context.Background()
		todo := &models.TodoItem{ID: uuid.New(), Title: "No details", CreatedAtUtc: time.Now().UTC()}
		require.NoError(t, repo.Create(ctx, todo))

		got, err := repo.Get(ctx, todo.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Description)
	})
}

func TestTodoRepository_Get_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		got, err := repo.Get(context.Background(), uuid.New())
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestTodoRepository_Create_DuplicateLeavesOriginal(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		ctx := context.Background()
		id := uuid.New()

		first := &models.TodoItem{ID: id, Title: "first", CreatedAtUtc: time.Now().UTC()}
		require.NoError(t, repo.Create(ctx, first))

		dup := &models.TodoItem{ID: id, Title: "second", Description: ptr("x"), CreatedAtUtc: time.Now().UTC()}
		assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrConflict)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Title)
		assert.Nil(t, got.Description)
	})
}

func TestTodoRepository_Create_TitleTooLong(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		err := repo.Create(context.Background(), &models.TodoItem{
			ID:           uuid.New(),
			Title:        strings.Repeat("a", models.MaxTitleLength+1),
			CreatedAtUtc: time.Now().UTC(),
		})
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrConflict)
	})
}

func TestTodoRepository_Ping(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo repositories.TodoRepository) {
		assert.NoError(t, repo.Ping(context.Background()))
	})
}
