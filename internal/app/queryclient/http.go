package queryclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/metrics"
)

// HTTPTodoQueryClient calls the accessor directly at a fixed base URL.
type HTTPTodoQueryClient struct {
	http    *http.Client
	baseURL string
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

var _ TodoQueryClient = (*HTTPTodoQueryClient)(nil)

func NewHTTPTodoQueryClient(c *http.Client, baseURL string, log logrus.FieldLogger, m *metrics.Metrics) *HTTPTodoQueryClient {
	return &HTTPTodoQueryClient{
		http:    c,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.WithField("transport", TransportHTTP),
		metrics: m,
	}
}

func (c *HTTPTodoQueryClient) GetTodo(ctx context.Context, id uuid.UUID) (models.TodoItemDto, bool, error) {
	log := c.log.WithFields(logrus.Fields{"operation": "GetTodo", "id": id})
	url := fmt.Sprintf("%s/todos/%s", c.baseURL, id)
	log.WithField("url", url).Debug("fetching todo from accessor")

	dto, found, err := c.get(ctx, url)
	switch {
	case err != nil:
		log.WithError(err).Error("error fetching todo from accessor")
		c.metrics.ObserveQuery(TransportHTTP, metrics.OutcomeError)
	case !found:
		log.Debug("todo not found")
		c.metrics.ObserveQuery(TransportHTTP, metrics.OutcomeNotFound)
	default:
		c.metrics.ObserveQuery(TransportHTTP, metrics.OutcomeFound)
	}
	return dto, found, err
}

func (c *HTTPTodoQueryClient) get(ctx context.Context, url string) (models.TodoItemDto, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.TodoItemDto{}, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.TodoItemDto{}, false, fmt.Errorf("calling accessor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TodoItemDto{}, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.TodoItemDto{}, false, &StatusError{StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	dto, err := decodeTodo(resp.Body)
	if err != nil {
		return models.TodoItemDto{}, false, err
	}
	return dto, true, nil
}
