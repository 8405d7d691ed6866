package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
	"github.com/chen-kiso-golan/TodoApp/internal/app/services"
)

// TodoStore is the accessor behaviour the routes need.
type TodoStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	Create(ctx context.Context, req models.CreateTodoRequest) (*models.TodoItem, error)
}

// RegisterAccessorRoutes mounts GET /todos/:id and POST /todos.
func RegisterAccessorRoutes(r gin.IRoutes, store TodoStore) {
	r.GET("/todos/:id", func(c *gin.Context) { getStoredTodo(c, store) })
	r.POST("/todos", func(c *gin.Context) { createStoredTodo(c, store) })
}

func getStoredTodo(c *gin.Context, store TodoStore) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, err := store.Get(c.Request.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func createStoredTodo(c *gin.Context, store TodoStore) {
	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	todo, err := store.Create(c.Request.Context(), req)
	switch {
	case errors.Is(err, repositories.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": fmt.Sprintf("Todo with id %s already exists", req.ID)})
		return
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		internalError(c, err)
		return
	}

	c.Header("Location", "/todos/"+todo.ID.String())
	c.JSON(http.StatusCreated, todo)
}
