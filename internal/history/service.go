// AngelaMos | 2026
// service.go

package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/optimize"
)

type ResultSource interface {
	Get(ctx context.Context, userID, resultID string) (*optimize.Result, error)
}

type Service struct {
	repo      Repository
	results   ResultSource
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	results ResultSource,
	retention time.Duration,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		results:   results,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Save keeps one of the caller's own results. A result can be saved once.
func (s *Service) Save(ctx context.Context, userID, resultID string) (*Entry, error) {
	result, err := s.results.Get(ctx, userID, resultID)
	if err != nil {
		return nil, err
	}

	original, enhanced := result.Analysis.Scores()
	e := &Entry{
		ID:             uuid.New().String(),
		UserID:         userID,
		ResultID:       result.ID,
		OriginalScore:  original,
		EnhancedScore:  enhanced,
		JobDescription: result.JobDescription,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	return s.repo.ListByUser(ctx, userID, ListLimit)
}

// Get returns an owned entry with the result it points at.
func (s *Service) Get(ctx context.Context, userID, entryID string) (*Entry, *optimize.Result, error) {
	e, err := s.owned(ctx, userID, entryID)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.results.Get(ctx, userID, e.ResultID)
	if err != nil {
		return nil, nil, err
	}

	return e, result, nil
}

func (s *Service) Delete(ctx context.Context, userID, entryID string) error {
	if _, err := uuid.Parse(entryID); err != nil {
		return fmt.Errorf("delete history: %w", core.ErrNotFound)
	}
	return s.repo.Delete(ctx, entryID, userID)
}

func (s *Service) owned(ctx context.Context, userID, entryID string) (*Entry, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, fmt.Errorf("get history: %w", core.ErrNotFound)
	}

	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, fmt.Errorf("get history: %w", core.ErrNotFound)
	}
	return e, nil
}

// RetentionDays is the number of whole days an entry is kept before Purge
// removes it.
func (s *Service) RetentionDays() int {
	return int(s.retention / (24 * time.Hour))
}

// Purge drops entries older than the retention window. Newer entries are
// never touched.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)

	n, err := s.repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.logger.Info("history purged", "removed", n, "cutoff", cutoff)
	return n, nil
}
