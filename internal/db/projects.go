package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/velto/animatic/internal/models"
)

func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, title, status, width, height, fps, codec, text_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		project.ID, project.Title, project.Status,
		project.Width, project.Height, project.FPS, project.Codec, project.TextMode,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT id, title, status, width, height, fps, codec, text_mode,
		       last_build_hash, error_message, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Title, &project.Status,
		&project.Width, &project.Height, &project.FPS, &project.Codec, &project.TextMode,
		&project.LastBuildHash, &project.ErrorMessage,
		&project.CreatedAt, &project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	query := `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateProjectError(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE projects
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, models.ProjectStatusFailed, errorMessage, id)
	return err
}

// SetProjectBuildHash records the hash of the last successfully
// submitted build, the idempotency key for resubmission detection.
func (db *DB) SetProjectBuildHash(ctx context.Context, id uuid.UUID, hash string) error {
	query := `
		UPDATE projects
		SET last_build_hash = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, hash, models.ProjectStatusSubmitted, id)
	return err
}
