// Package storage keeps local client state in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pembukuan-dev/pembukuan/internal/session"
)

// DB is the local state database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and migrates it.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Sessions returns a session.Store backed by the sessions table.
func (d *DB) Sessions() *SessionStore {
	return &SessionStore{db: d.db}
}

// SessionStore implements session.Store.
type SessionStore struct {
	db *sql.DB
}

var _ session.Store = (*SessionStore)(nil)

// Save implements session.Store.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (profile, role, token, subject, name, entity_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET
			role = excluded.role,
			token = excluded.token,
			subject = excluded.subject,
			name = excluded.name,
			entity_id = excluded.entity_id,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		sess.Profile, string(sess.Role), sess.Token, sess.Subject, sess.Name, sess.EntityID,
		formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.Profile, err)
	}
	return nil
}

// Load implements session.Store.
func (s *SessionStore) Load(ctx context.Context, profile string) (*session.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT profile, role, token, subject, name, entity_id, created_at, expires_at
		FROM sessions WHERE profile = ?`, profile)

	var (
		sess             session.Session
		role             string
		created, expires string
	)
	err := row.Scan(&sess.Profile, &role, &sess.Token, &sess.Subject, &sess.Name, &sess.EntityID, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", profile, err)
	}

	sess.Role = session.Role(role)
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("load session %s: created_at: %w", profile, err)
	}
	if sess.ExpiresAt, err = parseTime(expires); err != nil {
		return nil, fmt.Errorf("load session %s: expires_at: %w", profile, err)
	}
	return &sess, nil
}

// Delete implements session.Store.
func (s *SessionStore) Delete(ctx context.Context, profile string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE profile = ?`, profile)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", profile, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrNoSession
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
