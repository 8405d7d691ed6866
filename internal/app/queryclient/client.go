// Package queryclient fetches todos from the accessor service on behalf of
// the manager. Callers depend on TodoQueryClient and never see which
// transport is in use; the transport is chosen once at startup by New.
package queryclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/metrics"
)

const (
	TransportHTTP = "http"
	TransportDapr = "dapr"
)

// TodoQueryClient looks up a todo in the accessor.
//
// A missing todo is reported as found == false with a nil error. A non-nil
// error means the lookup itself failed and nothing is known about the todo.
type TodoQueryClient interface {
	GetTodo(ctx context.Context, id uuid.UUID) (todo models.TodoItemDto, found bool, err error)
}

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status from accessor")

// StatusError reports a response that was neither success nor not-found.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("accessor returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("accessor returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Config selects and parameterizes the transport.
type Config struct {
	Transport string
	// BaseURL of the accessor, used by the http transport.
	BaseURL string
	// DaprEndpoint is the sidecar's HTTP address, used by the dapr transport.
	DaprEndpoint string
	DaprAppID    string
	DaprAPIToken string
	Timeout      time.Duration
}

// New returns the client for cfg.Transport.
func New(cfg Config, log logrus.FieldLogger, m *metrics.Metrics) (TodoQueryClient, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Transport {
	case TransportHTTP, "":
		if cfg.BaseURL == "" {
			return nil, errors.New("queryclient: http transport requires a base URL")
		}
		return NewHTTPTodoQueryClient(httpClient, cfg.BaseURL, log, m), nil
	case TransportDapr:
		if cfg.DaprEndpoint == "" || cfg.DaprAppID == "" {
			return nil, errors.New("queryclient: dapr transport requires a sidecar endpoint and app id")
		}
		return NewDaprTodoQueryClient(httpClient, cfg.DaprEndpoint, cfg.DaprAppID, cfg.DaprAPIToken, log, m), nil
	default:
		return nil, fmt.Errorf("queryclient: unknown transport %q", cfg.Transport)
	}
}

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}

func decodeTodo(r io.Reader) (models.TodoItemDto, error) {
	var dto models.TodoItemDto
	if err := json.NewDecoder(r).Decode(&dto); err != nil {
		return models.TodoItemDto{}, fmt.Errorf("decoding todo: %w", err)
	}
	return dto, nil
}
