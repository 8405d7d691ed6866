package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

var (
	ErrNotFound = errors.New("todo not found")
	ErrConflict = errors.New("todo already exists")
)

type TodoRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error)
	Create(ctx context.Context, todo *models.TodoItem) error
	Ping(ctx context.Context) error
}

type PostgresTodoRepo struct {
	db *sql.DB
}

func NewPostgresTodoRepo(dsn string) (*PostgresTodoRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS todo_items (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			description VARCHAR(2000),
			created_at_utc TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating todo_items: %w", err)
	}

	return &PostgresTodoRepo{db: db}, nil
}

func (r *PostgresTodoRepo) Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	var (
		t    models.TodoItem
		desc sql.NullString
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, description, created_at_utc FROM todo_items WHERE id = $1", id,
	).Scan(&t.ID, &t.Title, &desc, &t.CreatedAtUtc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting todo %s: %w", id, err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	t.CreatedAtUtc = t.CreatedAtUtc.UTC()
	return &t, nil
}

func (r *PostgresTodoRepo) Create(ctx context.Context, todo *models.TodoItem) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO todo_items (id, title, description, created_at_utc) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`,
		todo.ID, todo.Title, todo.Description, todo.CreatedAtUtc.UTC())
	if err != nil {
		return fmt.Errorf("inserting todo %s: %w", todo.ID, err)
	}
	return conflictIfUnchanged(res, todo.ID)
}

func (r *PostgresTodoRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresTodoRepo) Close() error {
	return r.db.Close()
}

func conflictIfUnchanged(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting todo %s: %w", id, err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
