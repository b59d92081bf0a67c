// AngelaMos | 2026
// handler.go

package optimize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/document"
	"github.com/carterperez-dev/enhancify/internal/llm"
	"github.com/carterperez-dev/enhancify/internal/middleware"
	"github.com/carterperez-dev/enhancify/internal/usage"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

type PDFRenderer interface {
	Render(w io.Writer, res document.Resume) error
}

type Handler struct {
	service   *Service
	renderer  PDFRenderer
	validator *validator.Validate
	now       func() time.Time
}

func NewHandler(service *Service, renderer PDFRenderer) *Handler {
	return &Handler{
		service:   service,
		renderer:  renderer,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
	}
}

// RegisterRoutes mounts the optimization endpoints. limiter throttles only
// the model-backed POST.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	limiter func(http.Handler) http.Handler,
) {
	r.Route("/optimizations", func(r chi.Router) {
		r.Use(authenticator)

		r.With(limiter).Post("/", h.Optimize)
		r.Get("/", h.List)
		r.Get("/{resultID}", h.Get)
		r.Put("/{resultID}/enhanced", h.UpdateEnhanced)
		r.Get("/{resultID}/download", h.Download)
	})
}

func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Optimize(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToResultResponse(result))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := parseIntQuery(r, "page_size", defaultPageSize)
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	items, total, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()), page, pageSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}
	if items == nil {
		items = []Summary{}
	}

	core.Paginated(w, items, page, pageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "resultID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToResultResponse(result))
}

func (h *Handler) UpdateEnhanced(w http.ResponseWriter, r *http.Request) {
	var enhanced EnhancedResume
	if err := json.NewDecoder(r.Body).Decode(&enhanced); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.service.UpdateEnhanced(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "resultID"),
		enhanced,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToResultResponse(result))
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "resultID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, ToDocument(result.Analysis.EnhancedResume)); err != nil {
		core.InternalServerError(w, fmt.Errorf("render pdf: %w", err))
		return
	}

	name := fmt.Sprintf("optimized-resume-%d.pdf", h.now().Unix())

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType(
		"attachment",
		map[string]string{"filename": name},
	))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w) //nolint:errcheck // client may disconnect
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		limitErr    *usage.LimitError
		providerErr *llm.RateLimitError
	)

	switch {
	case errors.As(err, &limitErr):
		core.JSONError(w, usage.LimitAppError(limitErr))
	case errors.As(err, &providerErr):
		seconds := int(providerErr.RetryAfter.Round(time.Second) / time.Second)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		core.JSONError(w, core.NewAppError(
			err,
			"The AI service is busy. Please try again shortly.",
			http.StatusTooManyRequests,
			"RATE_LIMITED_BY_PROVIDER",
		).WithDetails(map[string]int{"retry_after_seconds": seconds}))
	case errors.Is(err, llm.ErrProviderAuth):
		core.JSONError(w, core.NewAppError(
			err,
			"The AI service is misconfigured",
			http.StatusInternalServerError,
			"PROVIDER_AUTH_ERROR",
		))
	case errors.Is(err, ErrMalformedOutput), errors.Is(err, llm.ErrEmptyCompletion):
		core.JSONError(w, core.NewAppError(
			err,
			"The AI response could not be processed. Please try again.",
			http.StatusInternalServerError,
			"MALFORMED_MODEL_OUTPUT",
		))
	case errors.Is(err, ErrResumeTextRequired):
		core.BadRequest(w, "resume_text or resume_id is required")
	case errors.Is(err, ErrJobDescriptionRequired):
		core.BadRequest(w, "job description is required")
	case errors.Is(err, ErrContactNameRequired):
		core.BadRequest(w, "enhanced resume must include a contact name")
	case errors.Is(err, ErrResumeNotFound):
		core.NotFound(w, "resume")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "optimization")
	default:
		core.InternalServerError(w, err)
	}
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
