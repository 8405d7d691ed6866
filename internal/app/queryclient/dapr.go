package queryclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/metrics"
)

// DefaultAccessorAppID is the Dapr app id the accessor registers under.
const DefaultAccessorAppID = "todoaccessor"

// DaprTodoQueryClient reaches the accessor through the local Dapr sidecar's
// service-invocation API. The sidecar resolves the app id and handles
// retries and mTLS; the callee's status code is passed back unchanged.
type DaprTodoQueryClient struct {
	http     *http.Client
	sidecar  string
	appID    string
	apiToken string
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

var _ TodoQueryClient = (*DaprTodoQueryClient)(nil)

func NewDaprTodoQueryClient(c *http.Client, sidecar, appID, apiToken string, log logrus.FieldLogger, m *metrics.Metrics) *DaprTodoQueryClient {
	return &DaprTodoQueryClient{
		http:     c,
		sidecar:  strings.TrimRight(sidecar, "/"),
		appID:    appID,
		apiToken: apiToken,
		log:      log.WithFields(logrus.Fields{"transport": TransportDapr, "app_id": appID}),
		metrics:  m,
	}
}

// daprError is the body the sidecar returns when the invocation itself fails.
type daprError struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// InvocationError is a failure reported by the sidecar rather than the accessor.
type InvocationError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("dapr invocation failed with status %d: %s %s", e.StatusCode, e.ErrorCode, e.Message)
}

func (c *DaprTodoQueryClient) GetTodo(ctx context.Context, id uuid.UUID) (models.TodoItemDto, bool, error) {
	log := c.log.WithFields(logrus.Fields{"operation": "GetTodo", "id": id})
	log.Debug("fetching todo from accessor via dapr")

	dto, found, err := c.invoke(ctx, "todos/"+id.String())
	switch {
	case err != nil:
		log.WithError(err).Error("error fetching todo from accessor via dapr")
		c.metrics.ObserveQuery(TransportDapr, metrics.OutcomeError)
	case !found:
		log.Debug("todo not found")
		c.metrics.ObserveQuery(TransportDapr, metrics.OutcomeNotFound)
	default:
		c.metrics.ObserveQuery(TransportDapr, metrics.OutcomeFound)
	}
	return dto, found, err
}

func (c *DaprTodoQueryClient) invoke(ctx context.Context, method string) (models.TodoItemDto, bool, error) {
	target := fmt.Sprintf("%s/v1.0/invoke/%s/method/%s", c.sidecar, url.PathEscape(c.appID), method)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return models.TodoItemDto{}, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiToken != "" {
		req.Header.Set("dapr-api-token", c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return models.TodoItemDto{}, false, fmt.Errorf("calling dapr sidecar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		dto, err := decodeTodo(resp.Body)
		if err != nil {
			return models.TodoItemDto{}, false, err
		}
		return dto, true, nil
	}

	body := readErrorBody(resp.Body)
	var de daprError
	if json.Unmarshal([]byte(body), &de) == nil && de.ErrorCode != "" {
		return models.TodoItemDto{}, false, &InvocationError{StatusCode: resp.StatusCode, ErrorCode: de.ErrorCode, Message: de.Message}
	}
	if resp.StatusCode == http.StatusNotFound {
		return models.TodoItemDto{}, false, nil
	}
	return models.TodoItemDto{}, false, &StatusError{StatusCode: resp.StatusCode, Body: body}
}
