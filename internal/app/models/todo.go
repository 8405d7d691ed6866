package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// TodoItem is the record persisted by the accessor.
type TodoItem struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

// TodoItemDto is the manager's view of a todo as received from the accessor.
// It mirrors TodoItem but is decoded independently of the storage schema.
type TodoItemDto struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	CreatedAtUtc time.Time `json:"createdAtUtc"`
}

// CreateTodoRequest is the accessor's create payload. The caller owns the id.
type CreateTodoRequest struct {
	ID          uuid.UUID `json:"id" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description *string   `json:"description"`
}

// CreateTodoInput is the manager's create payload.
type CreateTodoInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

const EventTodoCreated = "todo.created"

type TodoEvent struct {
	Type          string    `json:"type"`
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	OccurredAtUtc time.Time `json:"occurredAtUtc"`
}
