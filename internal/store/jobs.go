package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedbackradar-engine/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

// SaveJob upserts the whole job row. The manager write-throughs every
// mutation here so the database never drifts from memory.
func SaveJob(ctx context.Context, db *sql.DB, j domain.Job) error {
	keywords, _ := json.Marshal(j.Keywords)
	results, err := json.Marshal(emptyIfNilResults(j.Results))
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	errs, err := json.Marshal(emptyIfNilErrors(j.Errors))
	if err != nil {
		return fmt.Errorf("encode errors: %w", err)
	}

	cancelled := 0
	if j.CancelRequested {
		cancelled = 1
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO jobs
  (id, status, keywords, concurrency, delay_seconds, total, completed, results, errors, cancel_requested, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  status = excluded.status,
  completed = excluded.completed,
  results = excluded.results,
  errors = excluded.errors,
  cancel_requested = excluded.cancel_requested,
  updated_at = excluded.updated_at;`,
		j.ID, string(j.Status), string(keywords), j.Concurrency, j.DelaySeconds,
		j.Progress.Total, j.Progress.Completed, string(results), string(errs), cancelled,
		j.CreatedAt.UTC().Format(time.RFC3339Nano), j.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func LoadJob(ctx context.Context, db *sql.DB, id string) (domain.Job, error) {
	row := db.QueryRowContext(ctx, `
SELECT id, status, keywords, concurrency, delay_seconds, total, completed, results, errors, cancel_requested, created_at, updated_at
FROM jobs WHERE id = ?;`, id)

	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return domain.Job{}, ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("load job: %w", err)
	}
	return j, nil
}

func ListJobs(ctx context.Context, db *sql.DB, limit int) ([]domain.Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, status, keywords, concurrency, delay_seconds, total, completed, results, errors, cancel_requested, created_at, updated_at
FROM jobs ORDER BY created_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// MarkOrphanJobsFailed flags jobs left pending/running by a previous
// process as failed. Resuming them is deliberately not supported.
func MarkOrphanJobsFailed(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `
UPDATE jobs SET status = ?, updated_at = ?
WHERE status IN (?, ?);`,
		string(domain.JobFailed), time.Now().UTC().Format(time.RFC3339Nano),
		string(domain.JobPending), string(domain.JobRunning),
	)
	if err != nil {
		return 0, fmt.Errorf("mark orphan jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.Job, error) {
	var (
		j                        domain.Job
		status                   string
		keywords, results, errs  string
		cancelled                int
		createdAtStr, updatedStr string
	)
	if err := r.Scan(
		&j.ID, &status, &keywords, &j.Concurrency, &j.DelaySeconds,
		&j.Progress.Total, &j.Progress.Completed, &results, &errs, &cancelled,
		&createdAtStr, &updatedStr,
	); err != nil {
		return domain.Job{}, err
	}

	j.Status = domain.JobStatus(status)
	j.CancelRequested = cancelled != 0
	_ = json.Unmarshal([]byte(keywords), &j.Keywords)
	_ = json.Unmarshal([]byte(results), &j.Results)
	_ = json.Unmarshal([]byte(errs), &j.Errors)
	j.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
	j.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return j, nil
}

func emptyIfNilResults(in []domain.TaskResult) []domain.TaskResult {
	if in == nil {
		return []domain.TaskResult{}
	}
	return in
}

func emptyIfNilErrors(in []domain.TaskError) []domain.TaskError {
	if in == nil {
		return []domain.TaskError{}
	}
	return in
}
