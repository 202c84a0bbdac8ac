package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite is the durable Storage driver for single-node deployments. Tokens
// are sealed through the Box before hitting disk.
type SQLite struct {
	db  *sqlx.DB
	box *Box
}

func OpenSQLite(dsn string, box *Box) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLite{db: db, box: box}, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions(
  key TEXT PRIMARY KEY,              -- "<actor>:<sid>"
  token TEXT NOT NULL,               -- sealed bearer token
  identity TEXT,                     -- raw profile JSON
  saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_saved_at ON sessions(saved_at);
`
	_, err := db.Exec(schema)
	return err
}

type sessionRow struct {
	Key      string `db:"key"`
	Token    string `db:"token"`
	Identity string `db:"identity"`
	SavedAt  string `db:"saved_at"`
}

func (s *SQLite) Get(ctx context.Context, key string) (*Record, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `SELECT key, token, identity, saved_at FROM sessions WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	savedAt, err := time.Parse(time.RFC3339, row.SavedAt)
	if err != nil || time.Since(savedAt) > TTL {
		_ = s.Delete(ctx, key)
		return nil, ErrNoSession
	}
	token, err := s.box.Open(row.Token)
	if err != nil {
		// Key rotation or corruption: treat as logged out.
		_ = s.Delete(ctx, key)
		return nil, ErrNoSession
	}
	return &Record{Token: token, Identity: []byte(row.Identity), SavedAt: savedAt}, nil
}

func (s *SQLite) Put(ctx context.Context, key string, rec *Record) error {
	sealed, err := s.box.Seal(rec.Token)
	if err != nil {
		return err
	}
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions(key, token, identity, saved_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET token=excluded.token, identity=excluded.identity, saved_at=excluded.saved_at
	`, key, sealed, string(rec.Identity), savedAt.Format(time.RFC3339))
	return err
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE key = ?`, key)
	return err
}
