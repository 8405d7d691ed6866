package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
	"github.com/chen-kiso-golan/TodoApp/internal/app/repositories"
)

const defaultTodoTTL = 5 * time.Minute

var ErrValidation = errors.New("validation failed")

// EventPublisher receives an event for every todo the accessor persists.
type EventPublisher interface {
	Publish(ctx context.Context, event models.TodoEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.TodoEvent) error { return nil }

type TodoService struct {
	repo   repositories.TodoRepository
	cache  repositories.TodoCache
	events EventPublisher
	ttl    time.Duration
	log    logrus.FieldLogger
	now    func() time.Time
}

type TodoServiceOption func(*TodoService)

func WithCache(cache repositories.TodoCache, ttl time.Duration) TodoServiceOption {
	return func(s *TodoService) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithEvents(p EventPublisher) TodoServiceOption {
	return func(s *TodoService) { s.events = p }
}

func WithLogger(l logrus.FieldLogger) TodoServiceOption {
	return func(s *TodoService) { s.log = l }
}

func WithClock(now func() time.Time) TodoServiceOption {
	return func(s *TodoService) { s.now = now }
}

func NewTodoService(repo repositories.TodoRepository, opts ...TodoServiceOption) *TodoService {
	s := &TodoService{
		repo:   repo,
		cache:  repositories.NoopTodoCache{},
		events: noopPublisher{},
		ttl:    defaultTodoTTL,
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns repositories.ErrNotFound when no todo has the given id.
func (s *TodoService) Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	if todo, err := s.cache.GetTodo(ctx, id); err != nil {
		s.log.WithError(err).WithField("id", id).Warn("todo cache read failed")
	} else if todo != nil {
		return todo, nil
	}

	todo, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, todo)
	return todo, nil
}

// Create persists a new todo under the caller's id and stamps its creation
// time. It returns repositories.ErrConflict if the id is taken.
func (s *TodoService) Create(ctx context.Context, req models.CreateTodoRequest) (*models.TodoItem, error) {
	if err := validateTodo(req.Title, req.Description); err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}

	todo := &models.TodoItem{
		ID:           req.ID,
		Title:        req.Title,
		Description:  req.Description,
		CreatedAtUtc: s.now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.remember(ctx, todo)

	event := models.TodoEvent{
		Type:          models.EventTodoCreated,
		ID:            todo.ID,
		Title:         todo.Title,
		OccurredAtUtc: todo.CreatedAtUtc,
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.WithError(err).WithField("id", todo.ID).Error("failed to publish todo event")
	}

	return todo, nil
}

func (s *TodoService) remember(ctx context.Context, todo *models.TodoItem) {
	if err := s.cache.SetTodo(ctx, todo, s.ttl); err != nil {
		s.log.WithError(err).WithField("id", todo.ID).Warn("todo cache write failed")
	}
}

func validateTodo(title string, description *string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, models.MaxTitleLength)
	}
	if description != nil && utf8.RuneCountInString(*description) > models.MaxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, models.MaxDescriptionLength)
	}
	return nil
}
