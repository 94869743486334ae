package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists jobs in the import_jobs table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO import_jobs (id, pipeline, seller_id, status, payload, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	summary, _ := json.Marshal(job.Summary)
	_, err := s.db.ExecContext(ctx, query,
		job.ID, job.Pipeline, job.SellerID, job.Status, []byte(job.Payload), summary, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

const jobColumns = `id, pipeline, seller_id, status, payload, summary, error, created_at, started_at, finished_at`

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM import_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return job, err
}

// List returns the most recent jobs, newest first.
// List returns a seller's most recent jobs, newest first.
func (s *Store) List(ctx context.Context, sellerID string, limit int) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM import_jobs WHERE seller_id = $1 ORDER BY created_at DESC LIMIT $2`, sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

// MarkRunning moves a queued job to running. A job that is already past
// queued is left alone and reported as ErrJobNotFound.
func (s *Store) MarkRunning(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`, id, StatusRunning, at, StatusQueued)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	return expectJob(res)
}

func (s *Store) Complete(ctx context.Context, id uuid.UUID, summary Summary, at time.Time) error {
	raw, _ := json.Marshal(summary)
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = $2, summary = $3, finished_at = $4
		WHERE id = $1
	`, id, StatusCompleted, raw, at)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return expectJob(res)
}

func (s *Store) Fail(ctx context.Context, id uuid.UUID, summary Summary, reason string, at time.Time) error {
	raw, _ := json.Marshal(summary)
	res, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = $2, summary = $3, error = $4, finished_at = $5
		WHERE id = $1
	`, id, StatusFailed, raw, reason, at)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return expectJob(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job      Job
		payload  []byte
		summary  []byte
		started  sql.NullTime
		finished sql.NullTime
	)
	err := row.Scan(&job.ID, &job.Pipeline, &job.SellerID, &job.Status,
		&payload, &summary, &job.Error, &job.CreatedAt, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	job.Payload = json.RawMessage(payload)
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &job.Summary); err != nil {
			return nil, fmt.Errorf("job %s has a corrupt summary: %w", job.ID, err)
		}
	}
	if started.Valid {
		job.StartedAt = &started.Time
	}
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}
	return &job, nil
}

func expectJob(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}
	return nil
}
