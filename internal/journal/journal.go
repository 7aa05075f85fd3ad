// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal persists finalized submission outcomes in a SQLite
// database and exports them for offline review.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tender-digest/internal/batch"
	"github.com/pdiddy/tender-digest/pkg/types"
)

const dbFile = "journal.db"

// Store manages the submission journal database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the journal database at dir/journal.db and
// creates the schema if it does not exist.
func NewStore(cfg types.JournalConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY,
			key TEXT NOT NULL,
			channel_id INTEGER NOT NULL,
			author_id INTEGER NOT NULL,
			documents TEXT,
			failures TEXT,
			summary TEXT,
			error TEXT,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_channel ON submissions(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_finished ON submissions(finished_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts one finalized outcome. It satisfies the collector's
// Recorder contract.
func (s *Store) Record(ctx context.Context, o batch.Outcome) error {
	names := make([]string, len(o.Documents))
	for i, d := range o.Documents {
		names[i] = d.Name
	}
	documentsJSON, _ := json.Marshal(names)
	failuresJSON, _ := json.Marshal(o.Failures)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, key, channel_id, author_id, documents, failures, summary, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), o.Key, o.ChannelID, o.AuthorID,
		string(documentsJSON), string(failuresJSON),
		o.Summary, o.Err, o.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// QueryOptions holds filters for journal listings and exports.
type QueryOptions struct {
	// ChannelID filters by channel. Zero matches all channels.
	ChannelID int64

	// FailedOnly keeps only submissions that produced no summary.
	FailedOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one journaled submission.
type Entry struct {
	ID         string          `json:"id" yaml:"id"`
	Key        string          `json:"key" yaml:"key"`
	ChannelID  int64           `json:"channel_id" yaml:"channel_id"`
	AuthorID   int64           `json:"author_id" yaml:"author_id"`
	Documents  []string        `json:"documents" yaml:"documents"`
	Failures   []batch.Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Summary    string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	Err        string          `json:"error,omitempty" yaml:"error,omitempty"`
	FinishedAt time.Time       `json:"finished_at" yaml:"finished_at"`
}

// List returns journaled submissions, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	query := `SELECT id, key, channel_id, author_id, documents, failures, summary, error, finished_at
		FROM submissions WHERE 1=1`
	var args []any

	if opts.ChannelID != 0 {
		query += ` AND channel_id = ?`
		args = append(args, opts.ChannelID)
	}
	if opts.FailedOnly {
		query += ` AND error != ''`
	}
	query += ` ORDER BY finished_at DESC LIMIT ?`
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			documentsJSON sql.NullString
			failuresJSON  sql.NullString
			finishedAt    string
		)
		if err := rows.Scan(&e.ID, &e.Key, &e.ChannelID, &e.AuthorID,
			&documentsJSON, &failuresJSON, &e.Summary, &e.Err, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if documentsJSON.Valid && documentsJSON.String != "" {
			if err := json.Unmarshal([]byte(documentsJSON.String), &e.Documents); err != nil {
				return nil, fmt.Errorf("parsing documents for %s: %w", e.ID, err)
			}
		}
		if failuresJSON.Valid && failuresJSON.String != "" {
			if err := json.Unmarshal([]byte(failuresJSON.String), &e.Failures); err != nil {
				return nil, fmt.Errorf("parsing failures for %s: %w", e.ID, err)
			}
		}
		if e.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parsing finished_at for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
