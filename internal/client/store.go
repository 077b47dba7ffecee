package client

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Credentials is the access/refresh token pair issued at login.
type Credentials struct {
	Access  string
	Refresh string
}

// Empty reports whether no token is held.
func (c Credentials) Empty() bool {
	return c.Access == "" && c.Refresh == ""
}

// Store persists credentials between runs.
type Store interface {
	Load(ctx context.Context) (Credentials, error)
	Save(ctx context.Context, creds Credentials) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps credentials for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds, nil
}

func (s *MemoryStore) Save(_ context.Context, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	return nil
}

// SQLiteStore keeps credentials in a local SQLite file as key/value rows.
type SQLiteStore struct {
	conn *sql.DB
}

// DefaultSessionPath returns ~/.fintrack/session.db.
func DefaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".fintrack", "session.db"), nil
}

// OpenSQLiteStore opens (creating if needed) the session database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	if _, err := conn.Exec(`CREATE TABLE IF NOT EXISTS session (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("creating session table: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (Credentials, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT key, value FROM session WHERE key IN (?, ?)", keyAccessToken, keyRefreshToken)
	if err != nil {
		return Credentials{}, fmt.Errorf("loading session: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var creds Credentials
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Credentials{}, fmt.Errorf("loading session: %w", err)
		}
		switch key {
		case keyAccessToken:
			creds.Access = value
		case keyRefreshToken:
			creds.Refresh = value
		}
	}
	if err := rows.Err(); err != nil {
		return Credentials{}, fmt.Errorf("loading session: %w", err)
	}
	return creds, nil
}

func (s *SQLiteStore) Save(ctx context.Context, creds Credentials) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range map[string]string{keyAccessToken: creds.Access, keyRefreshToken: creds.Refresh} {
		if value == "" {
			if _, err := tx.ExecContext(ctx, "DELETE FROM session WHERE key = ?", key); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx,
		"DELETE FROM session WHERE key IN (?, ?)", keyAccessToken, keyRefreshToken); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
