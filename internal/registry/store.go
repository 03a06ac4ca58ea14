// Package registry persists the projects served by the multi-project server.
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("registry: api not found")
	ErrDuplicate = errors.New("registry: api name already registered")
	ErrInvalid   = errors.New("registry: invalid api")
)

// Api is one registered project. Path is the project directory; Upstream,
// when set, is the base URL its API is proxied to.
type Api struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Upstream  string    `json:"upstream,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps Apis in a SQL table.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database. Call CreateTable once before use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateTable creates the apis table if it is missing.
func (s *Store) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS apis (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		path       TEXT NOT NULL,
		upstream   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("registry: creating table: %w", err)
	}
	return nil
}

// Add registers a project. The name becomes the URL prefix, so it may not
// contain a slash.
func (s *Store) Add(ctx context.Context, name, path, upstream string) (*Api, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") || path == "" {
		return nil, fmt.Errorf("%w: name %q path %q", ErrInvalid, name, path)
	}
	api := &Api{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      path,
		Upstream:  upstream,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM apis WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO apis (id, name, path, upstream, created_at) VALUES (?, ?, ?, ?, ?)`,
		api.ID, api.Name, api.Path, api.Upstream, api.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("registry: adding %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return api, nil
}

// List returns every Api ordered by name.
func (s *Store) List(ctx context.Context) ([]*Api, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, path, upstream, created_at FROM apis ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("registry: listing: %w", err)
	}
	defer rows.Close()

	var out []*Api
	for rows.Next() {
		api := &Api{}
		if err := rows.Scan(&api.ID, &api.Name, &api.Path, &api.Upstream, &api.CreatedAt); err != nil {
			return nil, fmt.Errorf("registry: listing: %w", err)
		}
		out = append(out, api)
	}
	return out, rows.Err()
}

// Get returns the Api with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Api, error) {
	return s.getBy(ctx, "id", id)
}

// ByName returns the Api registered under name.
func (s *Store) ByName(ctx context.Context, name string) (*Api, error) {
	return s.getBy(ctx, "name", name)
}

func (s *Store) getBy(ctx context.Context, column, value string) (*Api, error) {
	api := &Api{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, path, upstream, created_at FROM apis WHERE `+column+` = ?`, value).
		Scan(&api.ID, &api.Name, &api.Path, &api.Upstream, &api.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, value)
	}
	if err != nil {
		return nil, fmt.Errorf("registry: get %s: %w", value, err)
	}
	return api, nil
}

// Delete removes the Api with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM apis WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("registry: delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("registry: delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
