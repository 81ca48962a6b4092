package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// OutcomeUploaded marks a successful transfer. Failures use the
// services.Kind string of the reason.
const OutcomeUploaded = "uploaded"

// Attempt is one journaled file outcome.
type Attempt struct {
	ID         int64
	RunID      string
	Sequence   int
	LocalPath  string
	RemoteName string
	Server     string
	Outcome    string
	Detail     string
	Bytes      int64
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the attempt uploaded the file.
func (a Attempt) Succeeded() bool {
	return a.Outcome == OutcomeUploaded
}

const (
	insertColumns  = "run_id, entry_sequence, local_path, remote_name, server, outcome, detail, bytes, started_at, finished_at"
	attemptColumns = "id, " + insertColumns
)

// Record appends an attempt.
func (s *Store) Record(ctx context.Context, a Attempt) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.FinishedAt.IsZero() {
		a.FinishedAt = time.Now()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = a.FinishedAt
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO upload_attempts (`+insertColumns+`)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.RunID,
			a.Sequence,
			a.LocalPath,
			a.RemoteName,
			nullableString(a.Server),
			a.Outcome,
			nullableString(a.Detail),
			a.Bytes,
			a.StartedAt.UTC().Format(time.RFC3339Nano),
			a.FinishedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit attempts, newest first. limit <= 0 means 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx, `SELECT `+attemptColumns+` FROM upload_attempts ORDER BY id DESC LIMIT ?`, limit)
}

// ListRun returns a run's attempts in the order they were recorded.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Attempt, error) {
	return s.query(ctx, `SELECT `+attemptColumns+` FROM upload_attempts WHERE run_id = ? ORDER BY id`, runID)
}

// LastUpload returns the most recent successful attempt for a remote name.
// ok is false when the name was never uploaded.
func (s *Store) LastUpload(ctx context.Context, remoteName string) (Attempt, bool, error) {
	rows, err := s.query(ctx,
		`SELECT `+attemptColumns+` FROM upload_attempts WHERE remote_name = ? AND outcome = ? ORDER BY id DESC LIMIT 1`,
		remoteName, OutcomeUploaded)
	if err != nil || len(rows) == 0 {
		return Attempt{}, false, err
	}
	return rows[0], true, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Attempt, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (Attempt, error) {
	var (
		a          Attempt
		server     sql.NullString
		detail     sql.NullString
		startedRaw string
		finishRaw  string
	)
	if err := scanner.Scan(
		&a.ID,
		&a.RunID,
		&a.Sequence,
		&a.LocalPath,
		&a.RemoteName,
		&server,
		&a.Outcome,
		&detail,
		&a.Bytes,
		&startedRaw,
		&finishRaw,
	); err != nil {
		return Attempt{}, err
	}
	a.Server = server.String
	a.Detail = detail.String
	a.StartedAt = parseTime(startedRaw)
	a.FinishedAt = parseTime(finishRaw)
	return a, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
