// Package history keeps a fetch log in SQLite so the dashboard can show when
// each provider was last refreshed and whether the refresh succeeded.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/prismhq/prism/internal/core"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Entry is one logged fetch attempt.
type Entry struct {
	Identity   string    `json:"identity"`
	Provider   string    `json:"provider"`
	FetchedAt  time.Time `json:"fetchedAt"`
	OK         bool      `json:"ok"`
	StatusCode int       `json:"statusCode"`
	Detail     string    `json:"detail,omitempty"`
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			identity TEXT NOT NULL,
			provider TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			ok INTEGER NOT NULL,
			status_code INTEGER NOT NULL,
			detail TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_log_identity_time ON fetch_log(identity, fetched_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

// Record logs one fetch attempt. A nil err means success with status 200;
// a FetchError contributes its mapped status and message.
func (s *Store) Record(ctx context.Context, identity string, p core.ProviderID, fetchErr error) error {
	now := s.now().UTC()
	ok := fetchErr == nil
	status := 200
	detail := ""
	if fetchErr != nil {
		detail = fetchErr.Error()
		status = core.AsFetchError(fetchErr).StatusCode
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_log (identity, provider, fetched_at, ok, status_code, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		identity,
		string(p),
		now.Format(time.RFC3339Nano),
		boolToInt(ok),
		status,
		detail,
	)
	if err != nil {
		return fmt.Errorf("history: insert fetch log: %w", err)
	}
	return nil
}

// Recent returns the newest entries for an identity, newest first.
func (s *Store) Recent(ctx context.Context, identity string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT identity, provider, fetched_at, ok, status_code, COALESCE(detail, '')
		FROM fetch_log
		WHERE identity = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query fetch log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var fetchedAt string
		var ok int
		if err := rows.Scan(&e.Identity, &e.Provider, &fetchedAt, &ok, &e.StatusCode, &e.Detail); err != nil {
			return nil, fmt.Errorf("history: scan fetch log row: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse fetched_at: %w", err)
		}
		e.FetchedAt = t
		e.OK = ok != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSuccess returns the time of the newest successful fetch for a provider,
// or a zero time when none exists.
func (s *Store) LastSuccess(ctx context.Context, identity string, p core.ProviderID) (time.Time, error) {
	var fetchedAt sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(fetched_at) FROM fetch_log
		WHERE identity = ? AND provider = ? AND ok = 1
	`, identity, string(p)).Scan(&fetchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("history: query last success: %w", err)
	}
	if !fetchedAt.Valid || fetchedAt.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, fetchedAt.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("history: parse last success: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
