package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_values (
    session_id TEXT NOT NULL,
    key TEXT NOT NULL,
    value BLOB NOT NULL,
    expires_at INTEGER NOT NULL,
    PRIMARY KEY (session_id, key)
);
CREATE INDEX IF NOT EXISTS idx_session_values_expires ON session_values(expires_at);
`

// SQLiteBackend keeps values in a SQLite database so orders survive restarts.
type SQLiteBackend struct {
	db   *sql.DB
	opts options
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string, opts ...Option) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging session database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating session database: %w", err)
	}
	return &SQLiteBackend{db: db, opts: applyOptions(opts)}, nil
}

// Get implements Backend. Reading a live row slides its expiry forward by the TTL.
func (b *SQLiteBackend) Get(ctx context.Context, sessionID, key string) ([]byte, bool, error) {
	now := b.opts.now().UTC()
	var value []byte
	err := b.db.QueryRowContext(ctx, `
UPDATE session_values SET expires_at = ?
WHERE session_id = ? AND key = ? AND expires_at > ?
RETURNING value`,
		now.Add(b.opts.ttl).UnixNano(), sessionID, key, now.UnixNano(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read session value: %w", err)
	}
	return value, true, nil
}

// Set implements Backend.
func (b *SQLiteBackend) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if value == nil {
		value = []byte{}
	}
	expires := b.opts.now().UTC().Add(b.opts.ttl).UnixNano()
	_, err := b.db.ExecContext(ctx, `
INSERT INTO session_values (session_id, key, value, expires_at) VALUES (?, ?, ?, ?)
ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		sessionID, key, value, expires,
	)
	if err != nil {
		return fmt.Errorf("write session value: %w", err)
	}
	return nil
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, sessionID string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM session_values WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupExpired implements Backend.
func (b *SQLiteBackend) CleanupExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = -1 // no LIMIT in SQLite
	}
	res, err := b.db.ExecContext(ctx, `
DELETE FROM session_values WHERE rowid IN (
    SELECT rowid FROM session_values WHERE expires_at <= ? LIMIT ?
)`, now.UTC().UnixNano(), limit)
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error { return b.db.Close() }
