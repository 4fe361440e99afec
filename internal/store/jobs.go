package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for lookups of unknown rows.
var ErrNotFound = sql.ErrNoRows

type JobStore struct {
	db *sql.DB
}

func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// Create persists a new job, assigning its identifier and submission
// timestamp. The caller supplies everything else.
func (s *JobStore) Create(ctx context.Context, j *Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.Status == "" {
		j.Status = StatusPending
	}
	if j.SubmittedAt.IsZero() {
		j.SubmittedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, insertJob,
		j.ID, j.UserID, j.DocumentName, j.DocumentPath,
		j.PaperType, j.PrintQuality, j.ColorMode, j.PaperSize,
		j.Status, j.DeviceToken, j.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID returns the job regardless of owner; authorization is the
// caller's responsibility.
func (s *JobStore) GetByID(ctx context.Context, id string) (*Job, error) {
	j := &Job{}
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, getJobByID, id).Scan(
		&j.ID, &j.UserID, &j.DocumentName, &j.DocumentPath,
		&j.PaperType, &j.PrintQuality, &j.ColorMode, &j.PaperSize,
		&j.Status, &j.DeviceToken, &j.SubmittedAt, &completedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}
	return j, nil
}

// ListByUser returns one user's jobs, newest submission first.
func (s *JobStore) ListByUser(ctx context.Context, userID int64) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, listJobsByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j := &Job{}
		var completedAt sql.NullTime
		if err := rows.Scan(
			&j.ID, &j.UserID, &j.DocumentName, &j.DocumentPath,
			&j.PaperType, &j.PrintQuality, &j.ColorMode, &j.PaperSize,
			&j.Status, &j.DeviceToken, &j.SubmittedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if completedAt.Valid {
			j.CompletedAt = &completedAt.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *JobStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	_, err := s.db.ExecContext(ctx, updateJobStatus, status, id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (s *JobStore) SetDeviceToken(ctx context.Context, id, token string) error {
	_, err := s.db.ExecContext(ctx, setJobDeviceToken, token, id)
	if err != nil {
		return fmt.Errorf("failed to set device token: %w", err)
	}
	return nil
}

// MarkCompleted stamps the terminal status and completion timestamp in a
// single write.
func (s *JobStore) MarkCompleted(ctx context.Context, id string, status Status, completedAt time.Time) error {
	if !status.IsTerminal() {
		return fmt.Errorf("status %q is not terminal", status)
	}
	_, err := s.db.ExecContext(ctx, markJobCompleted, status, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, deleteJob, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// DeleteSubmittedBefore removes every job row submitted before the
// cutoff, regardless of status, and reports how many were deleted.
func (s *JobStore) DeleteSubmittedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, deleteJobsSubmittedBefore, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired jobs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted jobs: %w", err)
	}
	return n, nil
}
