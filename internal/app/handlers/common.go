package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// todoID parses the :id path parameter. A malformed id cannot name a todo,
// so it is answered with 404 rather than 400.
func todoID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
		return uuid.Nil, false
	}
	return id, true
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealth mounts GET /healthz. With no pingers it only reports liveness.
func RegisterHealth(r gin.IRoutes, deps ...Pinger) {
	r.GET("/healthz", func(c *gin.Context) {
		for _, d := range deps {
			if err := d.Ping(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
