package storage

import "database/sql"

// migrateV001 creates the initial client schema. Every statement uses
// IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS client_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS upload_history (
			id          TEXT PRIMARY KEY,
			table_name  TEXT NOT NULL,
			file_name   TEXT NOT NULL DEFAULT '',
			byte_size   INTEGER NOT NULL DEFAULT 0,
			status      TEXT NOT NULL CHECK (status IN ('succeeded', 'failed')),
			message     TEXT NOT NULL DEFAULT '',
			uploaded_by TEXT NOT NULL DEFAULT '',
			uploaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_upload_history_ts    ON upload_history(uploaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_upload_history_table ON upload_history(table_name)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
