// AngelaMos | 2026
// handler.go

package history

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/middleware"
	"github.com/carterperez-dev/enhancify/internal/optimize"
)

type SaveRequest struct {
	ResultID string `json:"result_id" validate:"required,uuid"`
}

type EntryResponse struct {
	ID             string    `json:"id"`
	ResultID       string    `json:"result_id"`
	OriginalScore  float64   `json:"original_score"`
	EnhancedScore  float64   `json:"enhanced_score"`
	Improvement    float64   `json:"improvement"`
	JobDescription string    `json:"job_description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListResponse carries the saved entries and how long each is kept.
type ListResponse struct {
	Entries       []EntryResponse `json:"entries"`
	RetentionDays int             `json:"retention_days"`
}

type DetailResponse struct {
	EntryResponse
	Result optimize.ResultResponse `json:"result"`
}

func ToEntryResponse(e *Entry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		ResultID:       e.ResultID,
		OriginalScore:  e.OriginalScore,
		EnhancedScore:  e.EnhancedScore,
		Improvement:    e.Improvement(),
		JobDescription: e.JobDescription,
		CreatedAt:      e.CreatedAt,
	}
}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/history", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Save)
		r.Get("/", h.List)
		r.Get("/{historyID}", h.Get)
		r.Delete("/{historyID}", h.Delete)
	})
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	e, err := h.service.Save(r.Context(), middleware.GetUserID(r.Context()), req.ResultID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToEntryResponse(e))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	out := make([]EntryResponse, 0, len(items))
	for i := range items {
		out = append(out, ToEntryResponse(&items[i]))
	}

	core.OK(w, ListResponse{
		Entries:       out,
		RetentionDays: h.service.RetentionDays(),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	e, result, err := h.service.Get(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "historyID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, DetailResponse{
		EntryResponse: ToEntryResponse(e),
		Result:        optimize.ToResultResponse(result),
	})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "historyID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.ConflictError("this result is already saved to history"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "history entry")
	default:
		core.InternalServerError(w, err)
	}
}
