package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/novahuman/compass/internal/models"
)

const debriefKeep = 100

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS progress_marks (
		epoch TEXT NOT NULL,
		day TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (epoch, day)
	);

	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS debriefs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		direction TEXT NOT NULL,
		step TEXT NOT NULL,
		minutes INTEGER NOT NULL,
		summary TEXT NOT NULL,
		blocker TEXT NOT NULL,
		next TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_debriefs_id ON debriefs(id DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// MarkDay records a progress mark; INSERT OR IGNORE makes the check and the
// mark one statement, so two logical callers can never both observe
// "unmarked".
func (s *SQLiteStore) MarkDay(ctx context.Context, epoch, day string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO progress_marks (epoch, day, created_at) VALUES (?, ?, ?)`,
		epoch, day, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("mark day: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark day rows affected: %w", err)
	}
	return n > 0, nil
}

// DayMarked reports whether progress was already counted for the pair.
func (s *SQLiteStore) DayMarked(ctx context.Context, epoch, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM progress_marks WHERE epoch = ? AND day = ?`,
		epoch, day,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query day mark: %w", err)
	}
	return true, nil
}

// PruneEpochs drops marks from any other direction epoch.
func (s *SQLiteStore) PruneEpochs(ctx context.Context, keep string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM progress_marks WHERE epoch != ?`, keep,
	); err != nil {
		return fmt.Errorf("prune epochs: %w", err)
	}
	return nil
}

// SetCachedSession stores the last active chat session id.
func (s *SQLiteStore) SetCachedSession(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES ('last_sid', ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sid, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("set cached session: %w", err)
	}
	return nil
}

// CachedSession returns the last active chat session id, or "".
func (s *SQLiteStore) CachedSession(ctx context.Context) (string, error) {
	var sid string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = 'last_sid'`,
	).Scan(&sid)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query cached session: %w", err)
	}
	return sid, nil
}

// SaveDebrief appends a debrief and trims the table to the newest entries.
func (s *SQLiteStore) SaveDebrief(ctx context.Context, d models.Debrief) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO debriefs (ts, direction, step, minutes, summary, blocker, next)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.Timestamp, d.Direction, d.Step, d.Minutes, d.Summary, d.Blocker, d.Next,
	); err != nil {
		return fmt.Errorf("insert debrief: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM debriefs WHERE id NOT IN (SELECT id FROM debriefs ORDER BY id DESC LIMIT ?)`,
		debriefKeep,
	); err != nil {
		return fmt.Errorf("trim debriefs: %w", err)
	}
	return nil
}

// LastDebrief returns the newest debrief, or nil when none exist.
func (s *SQLiteStore) LastDebrief(ctx context.Context) (*models.Debrief, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ts, direction, step, minutes, summary, blocker, next
		 FROM debriefs ORDER BY id DESC LIMIT 1`,
	)

	var d models.Debrief
	err := row.Scan(&d.Timestamp, &d.Direction, &d.Step, &d.Minutes, &d.Summary, &d.Blocker, &d.Next)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan debrief row: %w", err)
	}
	return &d, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
