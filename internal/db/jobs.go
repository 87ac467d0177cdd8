package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Thinkelution/slasher-tv-ai/internal/models"
)

func (db *DB) CreateJob(ctx context.Context, job *models.RenderJob) error {
	query := `
		INSERT INTO render_jobs (
			id, type, dealer_id, stock_number, style, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.Type, job.DealerID, job.StockNumber, job.Style, job.Status,
	).Scan(&job.CreatedAt, &job.UpdatedAt)
}

func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*models.RenderJob, error) {
	query := `
		SELECT
			id, type, dealer_id, stock_number, style, status,
			error_message, video_path, remote_url, created_at, updated_at
		FROM render_jobs
		WHERE id = $1
	`

	job := &models.RenderJob{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&job.ID, &job.Type, &job.DealerID, &job.StockNumber, &job.Style,
		&job.Status, &job.ErrorMessage, &job.VideoPath, &job.RemoteURL,
		&job.CreatedAt, &job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	query := `UPDATE render_jobs SET status = $1, updated_at = now() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateJobError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE render_jobs
		SET status = $1, error_message = $2, updated_at = now()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusFailed, errorMessage, id)
	return err
}

// CompleteJob records the finished render's outputs.
func (db *DB) CompleteJob(ctx context.Context, id uuid.UUID, videoPath string, remoteURL *string) error {
	query := `
		UPDATE render_jobs
		SET status = $1, video_path = $2, remote_url = $3, updated_at = now()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusSucceeded, videoPath, remoteURL, id)
	return err
}
