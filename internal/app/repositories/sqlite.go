package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chen-kiso-golan/TodoApp/internal/app/models"
)

// SQLiteTodoRepo stores todos in SQLite. Used for local runs and tests.
type SQLiteTodoRepo struct {
	db *sql.DB
}

// OpenSQLite opens the database at path (":memory:" allowed) and applies the schema.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// each :memory: connection is its own database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS todo_items (
		id             TEXT PRIMARY KEY,
		title          TEXT NOT NULL CHECK(length(title) <= 200),
		description    TEXT CHECK(description IS NULL OR length(description) <= 2000),
		created_at_utc TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating todo_items: %w", err)
	}
	return db, nil
}

func NewSQLiteTodoRepo(db *sql.DB) *SQLiteTodoRepo {
	return &SQLiteTodoRepo{db: db}
}

func (r *SQLiteTodoRepo) Get(ctx context.Context, id uuid.UUID) (*models.TodoItem, error) {
	var (
		idStr, createdStr string
		desc              sql.NullString
		t                 models.TodoItem
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, created_at_utc FROM todo_items WHERE id = ?`, id.String(),
	).Scan(&idStr, &t.Title, &desc, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting todo %s: %w", id, err)
	}

	if t.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parsing id %q: %w", idStr, err)
	}
	if t.CreatedAtUtc, err = time.Parse(time.RFC3339Nano, createdStr); err != nil {
		return nil, fmt.Errorf("parsing created_at_utc %q: %w", createdStr, err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return &t, nil
}

func (r *SQLiteTodoRepo) Create(ctx context.Context, todo *models.TodoItem) error {
	var desc sql.NullString
	if todo.Description != nil {
		desc = sql.NullString{String: *todo.Description, Valid: true}
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO todo_items (id, title, description, created_at_utc) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		todo.ID.String(), todo.Title, desc, todo.CreatedAtUtc.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting todo %s: %w", todo.ID, err)
	}
	return conflictIfUnchanged(res, todo.ID)
}

func (r *SQLiteTodoRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
