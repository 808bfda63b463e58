// Package persistence provides the SQLite-backed interaction log. It is an
// append-only, best-effort sink; the gateway never depends on its success.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"fiaecoach/pkg/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS fiae_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	problem TEXT NOT NULL,
	answer  TEXT NOT NULL
);
`

// Interaction is one logged problem/answer pair.
type Interaction struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Problem   string `json:"problem"`
	Answer    string `json:"answer"`
}

// DB wraps the interaction log database. Construct with Open, release with
// Close.
type DB struct {
	db     *sql.DB
	logger *logx.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the interaction log at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000",
		path,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &DB{
		db:     db,
		logger: logx.NewLogger("persistence"),
		now:    time.Now,
	}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveInteraction appends one problem/answer pair. Blank pairs are dropped.
func (d *DB) SaveInteraction(ctx context.Context, problem, answerJSON string) error {
	problem = strings.TrimSpace(problem)
	answerJSON = strings.TrimSpace(answerJSON)
	if problem == "" || answerJSON == "" {
		return nil
	}

	createdAt := d.now().UTC().Format("2006-01-02T15:04:05") + "Z"
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO fiae_logs (created_at, problem, answer) VALUES (?, ?, ?)`,
		createdAt, problem, answerJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}
	return nil
}

// Recent returns the newest interactions, most recent first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, created_at, problem, answer FROM fiae_logs ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		if err := rows.Scan(&it.ID, &it.CreatedAt, &it.Problem, &it.Answer); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate interactions: %w", err)
	}
	return out, nil
}
