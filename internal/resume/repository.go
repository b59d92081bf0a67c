// AngelaMos | 2026
// repository.go

package resume

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type Repository interface {
	UploadLog
	Create(ctx context.Context, r *Resume) error
	GetByID(ctx context.Context, id string) (*Resume, error)
	ClearFilePath(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const resumeColumns = `
	id, user_id, file_name, file_path, content_type,
	resume_text, job_description, created_at`

func (r *repository) Create(ctx context.Context, res *Resume) error {
	query := `
		INSERT INTO extracted_resumes (
			id, user_id, file_name, file_path, content_type,
			resume_text, job_description
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &res.CreatedAt, query,
		res.ID,
		res.UserID,
		res.FileName,
		res.FilePath,
		res.ContentType,
		res.ResumeText,
		res.JobDescription,
	)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create resume: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create resume: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Resume, error) {
	query := "SELECT " + resumeColumns + " FROM extracted_resumes WHERE id = $1"

	var res Resume
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get resume: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get resume: %w", err)
	}

	return &res, nil
}

func (r *repository) UploadTimesSince(
	ctx context.Context,
	userID string,
	since time.Time,
) ([]time.Time, error) {
	query := `
		SELECT created_at FROM extracted_resumes
		WHERE user_id = $1 AND created_at > $2
		ORDER BY created_at ASC`

	var times []time.Time
	if err := r.db.SelectContext(ctx, &times, query, userID, since); err != nil {
		return nil, fmt.Errorf("list upload times: %w", err)
	}

	return times, nil
}

func (r *repository) ClearFilePath(ctx context.Context, id string) error {
	query := `UPDATE extracted_resumes SET file_path = NULL WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("clear file path: %w", err)
	}

	return nil
}
