package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a state key or upload does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for local client data.
type Store interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
	DeleteState(ctx context.Context, keys ...string) error
	RecordUpload(ctx context.Context, upload *Upload) error
	RecentUploads(ctx context.Context, limit int) ([]Upload, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	getState     *sql.Stmt
	upsertState  *sql.Stmt
	insertUpload *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getState, err = s.db.Prepare(`SELECT value FROM client_state WHERE key = ?`)
	if err != nil {
		return err
	}

	s.upsertState, err = s.db.Prepare(`
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.insertUpload, err = s.db.Prepare(`
		INSERT INTO upload_history (id, table_name, file_name, byte_size, status, message, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// generateID creates an upload ID: UPL- + 8 random hex chars.
func generateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "UPL-" + hex.EncodeToString(b), nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// GetState returns the value stored under key, or ErrNotFound.
func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := s.getState.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("state %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("get state: %w", err)
	}
	return value, nil
}

// SetState inserts or replaces the value stored under key.
func (s *SQLiteStore) SetState(ctx context.Context, key, value string) error {
	ts := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.upsertState.ExecContext(ctx, key, value, ts); err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// SetStates writes several keys in one transaction.
func (s *SQLiteStore) SetStates(ctx context.Context, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ts := time.Now().UTC().Format(time.RFC3339)
	stmt := tx.StmtContext(ctx, s.upsertState)
	for k, v := range values {
		if _, err := stmt.ExecContext(ctx, k, v, ts); err != nil {
			return fmt.Errorf("set state %q: %w", k, err)
		}
	}

	return tx.Commit()
}

// DeleteState removes every given key in one transaction. Missing keys are
// ignored.
func (s *SQLiteStore) DeleteState(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM client_state WHERE key = ?", k); err != nil {
			return fmt.Errorf("delete state %q: %w", k, err)
		}
	}

	return tx.Commit()
}

// RecordUpload stores an upload attempt. ID and UploadedAt are filled in
// when empty.
func (s *SQLiteStore) RecordUpload(ctx context.Context, u *Upload) error {
	if u.Status != UploadSucceeded && u.Status != UploadFailed {
		return fmt.Errorf("invalid upload status %q", u.Status)
	}

	if u.ID == "" {
		id, err := generateID()
		if err != nil {
			return fmt.Errorf("generate ID: %w", err)
		}
		u.ID = id
	}
	if u.UploadedAt.IsZero() {
		u.UploadedAt = time.Now()
	}

	_, err := s.insertUpload.ExecContext(ctx,
		u.ID, u.Table, u.FileName, u.ByteSize, u.Status, u.Message, u.UploadedBy,
		u.UploadedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// RecentUploads returns the newest uploads first.
func (s *SQLiteStore) RecentUploads(ctx context.Context, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_name, file_name, byte_size, status, message, uploaded_by, uploaded_at
		FROM upload_history
		ORDER BY uploaded_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query uploads: %w", err)
	}
	defer rows.Close()

	uploads := []Upload{}
	for rows.Next() {
		var u Upload
		var tsStr string
		if err := rows.Scan(
			&u.ID, &u.Table, &u.FileName, &u.ByteSize, &u.Status,
			&u.Message, &u.UploadedBy, &tsStr,
		); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		u.UploadedAt, _ = parseTimestamp(tsStr)
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM client_state").Scan(&stats.StateKeys)
	if err != nil {
		return nil, fmt.Errorf("count state: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) FROM upload_history",
	).Scan(&stats.TotalUploads, &stats.FailedUploads)
	if err != nil {
		return nil, fmt.Errorf("count uploads: %w", err)
	}

	if stats.TotalUploads > 0 {
		var lastStr string
		if err := s.db.QueryRowContext(ctx, "SELECT MAX(uploaded_at) FROM upload_history").Scan(&lastStr); err != nil {
			return nil, fmt.Errorf("last upload: %w", err)
		}
		stats.LastUpload, _ = parseTimestamp(lastStr)
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT table_name, COUNT(*) AS cnt FROM upload_history GROUP BY table_name ORDER BY cnt DESC, table_name LIMIT 10",
	)
	if err != nil {
		return nil, fmt.Errorf("top tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc TableCount
		if err := rows.Scan(&tc.Table, &tc.Count); err != nil {
			return nil, err
		}
		stats.TopTables = append(stats.TopTables, tc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.getState, s.upsertState, s.insertUpload}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
