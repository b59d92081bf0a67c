// AngelaMos | 2026
// service.go

package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/extract"
)

var ErrJobDescriptionRequired = errors.New("job description is required")

type TextExtractor interface {
	Accepts(contentType string) bool
	Extract(ctx context.Context, data []byte, contentType string) (string, error)
}

type FileStore interface {
	Save(userID, contentType string, data []byte, at time.Time) (string, error)
	Open(path string) (*os.File, error)
	Remove(path string) error
}

type ServiceConfig struct {
	RequireJobDescription bool
}

type Service struct {
	repo      Repository
	extractor TextExtractor
	files     FileStore
	limiter   *Limiter
	cfg       ServiceConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	extractor TextExtractor,
	files FileStore,
	limiter *Limiter,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		extractor: extractor,
		files:     files,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

type UploadInput struct {
	FileName       string
	ContentType    string
	Data           []byte
	JobDescription string
}

// Upload runs the cheap checks first, then the window limiter, then
// extraction and validation. Nothing is written unless every gate passes.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (*Resume, error) {
	jobDescription := strings.TrimSpace(in.JobDescription)
	if s.cfg.RequireJobDescription && jobDescription == "" {
		return nil, ErrJobDescriptionRequired
	}

	if !s.extractor.Accepts(in.ContentType) {
		return nil, fmt.Errorf("upload: %w: %s", extract.ErrUnsupportedFormat, in.ContentType)
	}

	if _, err := s.limiter.Allow(ctx, userID); err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, in.Data, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	if err := ValidateText(text); err != nil {
		return nil, err
	}

	now := s.now()
	path, err := s.files.Save(userID, in.ContentType, in.Data, now)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	res := &Resume{
		ID:             uuid.New().String(),
		UserID:         userID,
		FileName:       in.FileName,
		FilePath:       &path,
		ContentType:    in.ContentType,
		ResumeText:     text,
		JobDescription: jobDescription,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		if rmErr := s.files.Remove(path); rmErr != nil {
			s.logger.Warn("remove orphaned upload",
				"user_id", userID,
				"path", path,
				"error", rmErr,
			)
		}
		return nil, fmt.Errorf("upload: %w", err)
	}

	s.logger.Info("resume uploaded",
		"user_id", userID,
		"resume_id", res.ID,
		"content_type", in.ContentType,
		"chars", len(text),
	)

	return res, nil
}

// GetOwned returns the upload only when userID owns it. Someone else's id
// reads as not found.
func (s *Service) GetOwned(ctx context.Context, userID, resumeID string) (*Resume, error) {
	if _, err := uuid.Parse(resumeID); err != nil {
		return nil, fmt.Errorf("get resume: %w", core.ErrNotFound)
	}

	res, err := s.repo.GetByID(ctx, resumeID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, fmt.Errorf("get resume: %w", core.ErrNotFound)
	}

	return res, nil
}

func (s *Service) OpenOriginal(ctx context.Context, userID, resumeID string) (*Resume, *os.File, error) {
	res, err := s.GetOwned(ctx, userID, resumeID)
	if err != nil {
		return nil, nil, err
	}
	if !res.HasOriginal() {
		return nil, nil, fmt.Errorf("open original: %w", core.ErrNotFound)
	}

	f, err := s.files.Open(*res.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("open original: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open original: %w", err)
	}

	return res, f, nil
}

// DiscardOriginal drops the stored file for an upload whose result has been
// saved. The text stays in the row.
func (s *Service) DiscardOriginal(ctx context.Context, res *Resume) error {
	if !res.HasOriginal() {
		return nil
	}

	if err := s.files.Remove(*res.FilePath); err != nil {
		return fmt.Errorf("discard original: %w", err)
	}

	if err := s.repo.ClearFilePath(ctx, res.ID); err != nil {
		return fmt.Errorf("discard original: %w", err)
	}

	return nil
}

func (s *Service) Quota(ctx context.Context, userID string) (Quota, error) {
	return s.limiter.Quota(ctx, userID)
}

func (s *Service) LimitWindow() time.Duration {
	return s.limiter.Window()
}
