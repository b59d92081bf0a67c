// AngelaMos | 2026
// repository.go

package optimize

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/enhancify/internal/core"
)

type Repository interface {
	Create(ctx context.Context, r *Result) error
	GetByID(ctx context.Context, id string) (*Result, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Summary, int, error)
	UpdateEnhanced(ctx context.Context, id, userID string, enhanced *EnhancedResume) (time.Time, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

type resultRow struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	ResumeID       *string   `db:"resume_id"`
	JobDescription string    `db:"job_description"`
	OriginalResume []byte    `db:"original_resume"`
	EnhancedResume []byte    `db:"enhanced_resume"`
	Improvements   []byte    `db:"improvements"`
	ATSScore       []byte    `db:"ats_score"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row *resultRow) toResult() (*Result, error) {
	r := &Result{
		ID:             row.ID,
		UserID:         row.UserID,
		ResumeID:       row.ResumeID,
		JobDescription: row.JobDescription,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}

	parts := []struct {
		raw []byte
		dst any
	}{
		{row.OriginalResume, &r.Analysis.OriginalResume},
		{row.EnhancedResume, &r.Analysis.EnhancedResume},
		{row.Improvements, &r.Analysis.Improvements},
		{row.ATSScore, &r.Analysis.ATSScore},
	}
	for _, p := range parts {
		if len(p.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(p.raw, p.dst); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", row.ID, err)
		}
	}

	return r, nil
}

func (r *repository) Create(ctx context.Context, res *Result) error {
	original, err := json.Marshal(res.Analysis.OriginalResume)
	if err != nil {
		return fmt.Errorf("encode original resume: %w", err)
	}
	enhanced, err := json.Marshal(res.Analysis.EnhancedResume)
	if err != nil {
		return fmt.Errorf("encode enhanced resume: %w", err)
	}
	improvements, err := json.Marshal(res.Analysis.Improvements)
	if err != nil {
		return fmt.Errorf("encode improvements: %w", err)
	}
	score, err := json.Marshal(res.Analysis.ATSScore)
	if err != nil {
		return fmt.Errorf("encode ats score: %w", err)
	}

	origScore, enhScore := res.Analysis.Scores()

	query := `
		INSERT INTO optimize_results (
			id, user_id, resume_id, job_description,
			original_resume, enhanced_resume, improvements, ats_score,
			original_score, enhanced_score
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	row := struct {
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}{}

	err = r.db.GetContext(ctx, &row, query,
		res.ID,
		res.UserID,
		res.ResumeID,
		res.JobDescription,
		string(original),
		string(enhanced),
		string(improvements),
		string(score),
		origScore,
		enhScore,
	)
	if err != nil {
		return fmt.Errorf("create result: %w", err)
	}

	res.CreatedAt = row.CreatedAt
	res.UpdatedAt = row.UpdatedAt

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Result, error) {
	query := `
		SELECT id, user_id, resume_id, job_description,
		       original_resume, enhanced_resume, improvements, ats_score,
		       created_at, updated_at
		FROM optimize_results WHERE id = $1`

	var row resultRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get result: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}

	return row.toResult()
}

func (r *repository) ListByUser(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]Summary, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM optimize_results WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}

	query := `
		SELECT id, original_score, enhanced_score,
		       COALESCE(enhanced_resume->'contact'->>'name', '') AS candidate_name,
		       created_at
		FROM optimize_results
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var items []Summary
	if err := r.db.SelectContext(ctx, &items, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	return items, total, nil
}

func (r *repository) UpdateEnhanced(
	ctx context.Context,
	id, userID string,
	enhanced *EnhancedResume,
) (time.Time, error) {
	payload, err := json.Marshal(enhanced)
	if err != nil {
		return time.Time{}, fmt.Errorf("encode enhanced resume: %w", err)
	}

	query := `
		UPDATE optimize_results
		SET enhanced_resume = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at`

	var updatedAt time.Time
	err = r.db.GetContext(ctx, &updatedAt, query, id, userID, string(payload))
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("update enhanced resume: %w", core.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("update enhanced resume: %w", err)
	}

	return updatedAt, nil
}
