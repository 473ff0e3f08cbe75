package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

func (db *DB) CreateJob(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (id, project_id, scene_id, type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		job.ID, job.ProjectID, job.SceneID, job.Type, job.Status,
	).Scan(&job.CreatedAt)
}

func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status models.JobStatus) error {
	var query string
	switch status {
	case models.JobStatusRunning:
		query = `UPDATE jobs SET status = $1, attempts = attempts + 1, started_at = NOW() WHERE id = $2`
	case models.JobStatusSucceeded, models.JobStatusFailed:
		query = `UPDATE jobs SET status = $1, finished_at = NOW() WHERE id = $2`
	default:
		query = `UPDATE jobs SET status = $1 WHERE id = $2`
	}

	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateJobError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, finished_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.JobStatusFailed, errorMessage, id)
	return err
}

func (db *DB) GetProjectJobs(ctx context.Context, projectID uuid.UUID) ([]models.Job, error) {
	query := `
		SELECT id, project_id, scene_id, type, status, attempts,
		       started_at, finished_at, error_message, created_at
		FROM jobs
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var job models.Job
		err := rows.Scan(
			&job.ID, &job.ProjectID, &job.SceneID, &job.Type, &job.Status,
			&job.Attempts, &job.StartedAt, &job.FinishedAt,
			&job.ErrorMessage, &job.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
