package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/tuvan/internal/models"
)

// SQLiteStorage implements Storage using SQLite. Set-valued and map-valued fields are
// stored as JSON text columns.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_dir TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		threads INTEGER NOT NULL,
		ops INTEGER NOT NULL,
		replies INTEGER NOT NULL,
		skipped_posts INTEGER NOT NULL,
		failed_threads INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_finished_at ON runs(finished_at);

	CREATE TABLE IF NOT EXISTS threads (
		thread_id TEXT PRIMARY KEY,
		title TEXT,
		skipped_posts INTEGER NOT NULL DEFAULT 0,
		run_id TEXT,
		analyzed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS op_analyses (
		thread_id TEXT PRIMARY KEY,
		title TEXT,
		budget REAL,
		budget_unit TEXT,
		budget_original TEXT,
		purposes TEXT NOT NULL,
		special_requirements TEXT NOT NULL,
		user TEXT,
		post_date TEXT,
		content_length INTEGER NOT NULL,
		FOREIGN KEY (thread_id) REFERENCES threads(thread_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS reply_analyses (
		thread_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		post_id TEXT,
		user TEXT,
		post_date TEXT,
		components TEXT NOT NULL,
		brands TEXT NOT NULL,
		prices TEXT NOT NULL,
		reactions TEXT NOT NULL,
		has_images INTEGER NOT NULL,
		content_length INTEGER NOT NULL,
		PRIMARY KEY (thread_id, seq),
		FOREIGN KEY (thread_id) REFERENCES threads(thread_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_replies_user ON reply_analyses(user);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRun inserts or replaces a run record.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *models.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, input_dir, started_at, finished_at, threads, ops, replies, skipped_posts, failed_threads)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.StartedAt, run.FinishedAt, run.Threads, run.OPs, run.Replies,
		run.SkippedPosts, run.FailedThreads,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// LastRun returns the most recently finished run.
func (s *SQLiteStorage) LastRun(ctx context.Context) (*models.Run, error) {
	var run models.Run
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input_dir, started_at, finished_at, threads, ops, replies, skipped_posts, failed_threads
		 FROM runs ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.InputDir, &run.StartedAt, &run.FinishedAt, &run.Threads, &run.OPs,
		&run.Replies, &run.SkippedPosts, &run.FailedThreads)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no runs recorded: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// SaveThread writes one thread analysis in a single transaction, replacing earlier rows.
func (s *SQLiteStorage) SaveThread(ctx context.Context, runID string, ta *models.ThreadAnalysis) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE thread_id = ?`, ta.ThreadID); err != nil {
		return fmt.Errorf("failed to clear thread %s: %w", ta.ThreadID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO threads (thread_id, title, skipped_posts, run_id, analyzed_at) VALUES (?, ?, ?, ?, ?)`,
		ta.ThreadID, ta.Title, ta.Skipped, runID, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to insert thread %s: %w", ta.ThreadID, err)
	}

	if ta.OP != nil {
		if err := insertOP(ctx, tx, ta.OP); err != nil {
			return err
		}
	}

	if len(ta.Replies) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO reply_analyses (thread_id, seq, post_id, user, post_date, components, brands, prices, reactions, has_images, content_length)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i := range ta.Replies {
			r := &ta.Replies[i]
			cols, err := marshalAll(r.Components, r.Brands, r.Prices, r.Reactions)
			if err != nil {
				return fmt.Errorf("failed to marshal reply %s: %w", r.PostID, err)
			}
			if _, err := stmt.ExecContext(ctx, ta.ThreadID, i, r.PostID, r.User, r.PostDate,
				cols[0], cols[1], cols[2], cols[3], r.HasImages, r.ContentLength); err != nil {
				return fmt.Errorf("failed to insert reply %s: %w", r.PostID, err)
			}
		}
	}
	return tx.Commit()
}

func insertOP(ctx context.Context, tx *sql.Tx, op *models.OPAnalysis) error {
	cols, err := marshalAll(op.Purposes, op.SpecialRequirements)
	if err != nil {
		return fmt.Errorf("failed to marshal op: %w", err)
	}
	var budget sql.NullFloat64
	var unit, original sql.NullString
	if op.Budget != nil {
		budget = sql.NullFloat64{Float64: op.Budget.Value, Valid: true}
		unit = sql.NullString{String: op.Budget.Unit, Valid: true}
		original = sql.NullString{String: op.Budget.OriginalText, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO op_analyses (thread_id, title, budget, budget_unit, budget_original, purposes, special_requirements, user, post_date, content_length)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ThreadID, op.Title, budget, unit, original, cols[0], cols[1], op.User, op.PostDate, op.ContentLength,
	)
	if err != nil {
		return fmt.Errorf("failed to insert op %s: %w", op.ThreadID, err)
	}
	return nil
}

// GetThread returns a stored thread analysis.
func (s *SQLiteStorage) GetThread(ctx context.Context, threadID string) (*models.ThreadAnalysis, error) {
	ta := models.ThreadAnalysis{ThreadID: threadID, Replies: []models.ReplyAnalysis{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT title, skipped_posts FROM threads WHERE thread_id = ?`, threadID,
	).Scan(&ta.Title, &ta.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread %s: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	ops, err := s.queryOPs(ctx, `WHERE thread_id = ?`, threadID)
	if err != nil {
		return nil, err
	}
	if len(ops) > 0 {
		ta.OP = &ops[0]
	}
	replies, err := s.queryReplies(ctx, `WHERE thread_id = ?`, threadID)
	if err != nil {
		return nil, err
	}
	ta.Replies = append(ta.Replies, replies...)
	return &ta, nil
}

// DeleteThread removes a thread with its OP and reply rows.
func (s *SQLiteStorage) DeleteThread(ctx context.Context, threadID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM threads WHERE thread_id = ?`, threadID)
	return err
}

// ListOPs returns every stored OP analysis.
func (s *SQLiteStorage) ListOPs(ctx context.Context) ([]models.OPAnalysis, error) {
	return s.queryOPs(ctx, "")
}

// ListReplies returns every stored reply analysis.
func (s *SQLiteStorage) ListReplies(ctx context.Context) ([]models.ReplyAnalysis, error) {
	return s.queryReplies(ctx, "")
}

func (s *SQLiteStorage) queryOPs(ctx context.Context, where string, args ...any) ([]models.OPAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, title, budget, budget_unit, budget_original, purposes, special_requirements, user, post_date, content_length
		 FROM op_analyses `+where+` ORDER BY thread_id`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ops := []models.OPAnalysis{}
	for rows.Next() {
		var op models.OPAnalysis
		var budget sql.NullFloat64
		var unit, original sql.NullString
		var purposes, reqs string
		if err := rows.Scan(&op.ThreadID, &op.Title, &budget, &unit, &original, &purposes, &reqs,
			&op.User, &op.PostDate, &op.ContentLength); err != nil {
			return nil, err
		}
		if budget.Valid {
			op.Budget = &models.MoneyValue{Value: budget.Float64, Unit: unit.String, OriginalText: original.String}
		}
		if err := unmarshalAll([]string{purposes, reqs}, &op.Purposes, &op.SpecialRequirements); err != nil {
			return nil, fmt.Errorf("failed to unmarshal op %s: %w", op.ThreadID, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (s *SQLiteStorage) queryReplies(ctx context.Context, where string, args ...any) ([]models.ReplyAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, post_id, user, post_date, components, brands, prices, reactions, has_images, content_length
		 FROM reply_analyses `+where+` ORDER BY thread_id, seq`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []models.ReplyAnalysis{}
	for rows.Next() {
		var r models.ReplyAnalysis
		var components, brands, prices, reactions string
		if err := rows.Scan(&r.ThreadID, &r.PostID, &r.User, &r.PostDate, &components, &brands,
			&prices, &reactions, &r.HasImages, &r.ContentLength); err != nil {
			return nil, err
		}
		if err := unmarshalAll([]string{components, brands, prices, reactions},
			&r.Components, &r.Brands, &r.Prices, &r.Reactions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reply %s: %w", r.PostID, err)
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// Counts returns the number of stored runs, threads, OPs and replies.
func (s *SQLiteStorage) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM runs),
		(SELECT COUNT(*) FROM threads),
		(SELECT COUNT(*) FROM op_analyses),
		(SELECT COUNT(*) FROM reply_analyses)`,
	).Scan(&c.Runs, &c.Threads, &c.OPs, &c.Replies)
	return c, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func marshalAll(values ...any) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[i] = string(b)
	}
	return out, nil
}

func unmarshalAll(data []string, targets ...any) error {
	for i, t := range targets {
		if err := json.Unmarshal([]byte(data[i]), t); err != nil {
			return err
		}
	}
	return nil
}
