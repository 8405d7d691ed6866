package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/app/queryclient"
	"github.com/chen-kiso-golan/TodoApp/internal/app/services"
)

// TodoIntake accepts create requests on the manager side.
type TodoIntake interface {
	Create(ctx context.Context, in models.CreateTodoInput) (models.CreateTodoRequest, error)
}

// RegisterManagerRoutes mounts GET /todos/:id, answered through the query
// client, and POST /todos, answered by the intake.
func RegisterManagerRoutes(r gin.IRoutes, queries queryclient.TodoQueryClient, intake TodoIntake) {
	r.GET("/todos/:id", func(c *gin.Context) { getTodo(c, queries) })
	r.POST("/todos", func(c *gin.Context) { createTodo(c, intake) })
}

func getTodo(c *gin.Context, queries queryclient.TodoQueryClient) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	todo, found, err := queries.GetTodo(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch todo from accessor"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return
	}
	c.JSON(http.StatusOK, todo)
}

func createTodo(c *gin.Context, intake TodoIntake) {
	var in models.CreateTodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := intake.Create(c.Request.Context(), in)
	if errors.Is(err, services.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}

	c.Header("Location", "/todos/"+req.ID.String())
	c.JSON(http.StatusAccepted, gin.H{"id": req.ID})
}
