package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

const blankTitleMessage = "Title is required and cannot be empty or whitespace"

// IntakeService accepts todo creation requests on the manager side.
type IntakeService struct {
	log   logrus.FieldLogger
	newID func() uuid.UUID
}

func NewIntakeService(log logrus.FieldLogger) *IntakeService {
	return &IntakeService{log: log, newID: uuid.New}
}

// Create validates and trims input and mints the id the todo will be stored
// under. The returned request is accepted but not stored anywhere yet.
func (s *IntakeService) Create(ctx context.Context, in models.CreateTodoInput) (models.CreateTodoRequest, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.CreateTodoRequest{}, fmt.Errorf("%w: %s", ErrValidation, blankTitleMessage)
	}

	var description *string
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		description = &d
	}
	if err := validateTodo(title, description); err != nil {
		return models.CreateTodoRequest{}, err
	}

	req := models.CreateTodoRequest{
		ID:          s.newID(),
		Title:       title,
		Description: description,
	}
	s.publish(ctx, req)

	return req, nil
}

// TODO: hand req to the accessor (or a queue feeding it) once the write path is decided.
func (s *IntakeService) publish(_ context.Context, req models.CreateTodoRequest) {
	s.log.WithField("id", req.ID).Debug("todo accepted; publishing not implemented")
}
