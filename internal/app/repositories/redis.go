package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

// TodoCache holds copies of persisted todos. Todos never change after
// creation, so entries are only ever written, never invalidated.
type TodoCache interface {
	GetTodo(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	SetTodo(ctx context.Context, todo *models.TodoItem, ttl time.Duration) error
}

type RedisTodoCache struct {
	rdb *redis.Client
}

func NewRedisTodoCache(rdb *redis.Client) *RedisTodoCache {
	return &RedisTodoCache{rdb: rdb}
}

func todoKey(id uuid.UUID) string {
	return "todo:" + id.String()
}

func (r *RedisTodoCache) GetTodo(
	ctx context.Context,
	id uuid.UUID,
) (*models.TodoItem, error) {

	val, err := r.rdb.Get(ctx, todoKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, err
	}

	var todo models.TodoItem
	if err := json.Unmarshal(val, &todo); err != nil {
		return nil, err
	}

	return &todo, nil
}

func (r *RedisTodoCache) SetTodo(
	ctx context.Context,
	todo *models.TodoItem,
	ttl time.Duration,
) error {

	data, err := json.Marshal(todo)
	if err != nil {
		return err
	}

	return r.rdb.Set(ctx, todoKey(todo.ID), data, ttl).Err()
}

// NoopTodoCache is used when no Redis address is configured.
type NoopTodoCache struct{}

func (NoopTodoCache) GetTodo(context.Context, uuid.UUID) (*models.TodoItem, error) { return nil, nil }

func (NoopTodoCache) SetTodo(context.Context, *models.TodoItem, time.Duration) error { return nil }
