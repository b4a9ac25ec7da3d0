package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	id      INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	title   TEXT NOT NULL,
	body    TEXT NOT NULL
);`

// SQLiteStore reads posts from a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema exists. ":memory:" opens a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("sqlite", err)
	}
	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, unavailable("sqlite", fmt.Errorf("create schema: %w", err))
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Seed inserts posts that are not present yet.
func (s *SQLiteStore) Seed(ctx context.Context, posts []Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("sqlite", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO posts (id, user_id, title, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return unavailable("sqlite", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		if _, err := stmt.ExecContext(ctx, p.ID, p.UserID, p.Title, p.Body); err != nil {
			return unavailable("sqlite", fmt.Errorf("insert post %d: %w", p.ID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("sqlite", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, body FROM posts ORDER BY id`)
	if err != nil {
		return nil, unavailable("sqlite", err)
	}
	defer rows.Close()

	var out []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Body); err != nil {
			return nil, unavailable("sqlite", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("sqlite", err)
	}
	return out, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id int) (*Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, body FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.UserID, &p.Title, &p.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("sqlite", err)
	}
	return &p, nil
}
