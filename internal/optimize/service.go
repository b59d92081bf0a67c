// AngelaMos | 2026
// service.go

package optimize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/llm"
	"github.com/carterperez-dev/enhancify/internal/resume"
	"github.com/carterperez-dev/enhancify/internal/usage"
)

var (
	ErrResumeTextRequired     = errors.New("resume text is required")
	ErrJobDescriptionRequired = errors.New("job description is required")
	ErrContactNameRequired    = errors.New("contact name is required")
	ErrResumeNotFound         = fmt.Errorf("resume: %w", core.ErrNotFound)
)

const (
	rawLogLimit    = 2000
	cleanupTimeout = 30 * time.Second
)

type UsageGate interface {
	Check(ctx context.Context, userID string) (usage.Decision, error)
	Release(ctx context.Context, claim *usage.Claim)
}

type ResumeSource interface {
	GetOwned(ctx context.Context, userID, resumeID string) (*resume.Resume, error)
	DiscardOriginal(ctx context.Context, res *resume.Resume) error
}

type ServiceConfig struct {
	RequireJobDescription bool
}

type Service struct {
	repo     Repository
	gate     UsageGate
	llm      llm.Completer
	resumes  ResumeSource
	cfg      ServiceConfig
	validate *validator.Validate
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	gate UsageGate,
	completer llm.Completer,
	resumes ResumeSource,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		gate:     gate,
		llm:      completer,
		resumes:  resumes,
		cfg:      cfg,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Optimize validates the input, passes the usage gate, asks the model and
// persists the parsed result. Nothing is stored unless the whole reply
// parses, and a freemium claim is handed back on any failure after the gate.
func (s *Service) Optimize(ctx context.Context, userID string, req OptimizeRequest) (*Result, error) {
	ctx, span := core.StartSpan(ctx, "optimize.Optimize", attribute.String("user.id", userID))
	defer span.End()

	var source *resume.Resume
	text := strings.TrimSpace(req.ResumeText)
	jobDescription := strings.TrimSpace(req.JobDescription)

	if req.ResumeID != "" {
		res, err := s.resumes.GetOwned(ctx, userID, req.ResumeID)
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrResumeNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("optimize: %w", err)
		}
		source = res
		text = strings.TrimSpace(res.ResumeText)
		if jobDescription == "" {
			jobDescription = strings.TrimSpace(res.JobDescription)
		}
	}

	if text == "" {
		return nil, ErrResumeTextRequired
	}
	if s.cfg.RequireJobDescription && jobDescription == "" {
		return nil, ErrJobDescriptionRequired
	}

	decision, err := s.gate.Check(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, userID, text, jobDescription, source)
	if err != nil {
		s.gate.Release(context.WithoutCancel(ctx), decision.Claim)
		core.SetSpanError(ctx, err)
		return nil, err
	}

	if source != nil && source.HasOriginal() {
		go s.discardOriginal(context.WithoutCancel(ctx), source)
	}

	s.logger.Info("resume optimized",
		"user_id", userID,
		"result_id", result.ID,
		"usage_state", decision.State,
	)

	return result, nil
}

func (s *Service) run(
	ctx context.Context,
	userID, text, jobDescription string,
	source *resume.Resume,
) (*Result, error) {
	raw, err := s.llm.Complete(ctx, BuildPrompt(text, jobDescription))
	if err != nil {
		s.logger.Error("llm call failed", "user_id", userID, "error", err)
		return nil, err
	}

	analysis, err := ParseAnalysis(raw, s.validate)
	if err != nil {
		s.logger.Error("unusable model output",
			"user_id", userID,
			"error", err,
			"raw", truncate(raw, rawLogLimit),
		)
		return nil, err
	}

	result := &Result{
		ID:             uuid.New().String(),
		UserID:         userID,
		JobDescription: jobDescription,
		Analysis:       *analysis,
	}
	if source != nil {
		result.ResumeID = &source.ID
	}

	if err := s.repo.Create(ctx, result); err != nil {
		s.logger.Error("persist result", "user_id", userID, "error", err)
		return nil, fmt.Errorf("optimize: %w", err)
	}

	return result, nil
}

func (s *Service) discardOriginal(ctx context.Context, res *resume.Resume) {
	ctx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	if err := s.resumes.DiscardOriginal(ctx, res); err != nil {
		s.logger.Warn("discard original upload",
			"resume_id", res.ID,
			"error", err,
		)
	}
}

// Get returns a result owned by userID.
func (s *Service) Get(ctx context.Context, userID, resultID string) (*Result, error) {
	if _, err := uuid.Parse(resultID); err != nil {
		return nil, fmt.Errorf("get result: %w", core.ErrNotFound)
	}

	r, err := s.repo.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, fmt.Errorf("get result: %w", core.ErrNotFound)
	}

	return r, nil
}

func (s *Service) List(ctx context.Context, userID string, page, pageSize int) ([]Summary, int, error) {
	return s.repo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}

// UpdateEnhanced replaces the whole enhanced resume after the same
// placeholder rules the model output goes through. A replacement without a
// contact name is rejected.
func (s *Service) UpdateEnhanced(
	ctx context.Context,
	userID, resultID string,
	enhanced EnhancedResume,
) (*Result, error) {
	if err := s.validate.Var(strings.TrimSpace(enhanced.Contact.Name), "required"); err != nil {
		return nil, ErrContactNameRequired
	}

	r, err := s.Get(ctx, userID, resultID)
	if err != nil {
		return nil, err
	}

	enhanced.Normalize()

	updatedAt, err := s.repo.UpdateEnhanced(ctx, r.ID, userID, &enhanced)
	if err != nil {
		return nil, err
	}

	r.Analysis.EnhancedResume = &enhanced
	r.UpdatedAt = updatedAt

	return r, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
