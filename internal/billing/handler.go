// AngelaMos | 2026
// handler.go

package billing

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/middleware"
)

const (
	webhookMaxBytes = 64 << 10
	signatureHeader = "Stripe-Signature"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/checkout", h.Checkout)
		r.Get("/status", h.Status)
		r.Post("/{subscriptionID}/cancel", h.Cancel)
	})
}

// RegisterWebhook mounts the provider callback. It carries no session and
// is authenticated by its signature alone.
func (h *Handler) RegisterWebhook(r chi.Router) {
	r.Post("/webhooks/stripe", h.Webhook)
}

func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/subscriptions", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/{subscriptionID}/approve", h.Approve)
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := ""
	if claims := middleware.GetClaims(ctx); claims != nil {
		email = claims.Email
	}

	p, err := h.service.Checkout(ctx, middleware.GetUserID(ctx), email)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, CheckoutResponse{
		PaymentID:   p.ID,
		CheckoutURL: *p.CheckoutURL,
	})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Status(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToStatusResponse(st))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Cancel(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "subscriptionID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, webhookMaxBytes))
	if err != nil {
		core.BadRequest(w, "invalid payload")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, map[string]bool{"received": true})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := parseIntQuery(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := parseIntQuery(r, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	status := Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		core.BadRequest(w, "status must be one of: pending approved cancelled expired")
		return
	}

	items, total, err := h.service.List(r.Context(), status, page, pageSize)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToAdminPaymentResponseList(items), page, pageSize, total)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Approve(
		r.Context(),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "subscriptionID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToPaymentResponse(p))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAlreadyPremium):
		core.JSONError(w, core.ConflictError("premium plan is already active"))
	case errors.Is(err, ErrNotPending):
		core.JSONError(w, core.ConflictError("payment is no longer pending"))
	case errors.Is(err, ErrCheckoutComplete):
		core.JSONError(w, core.ConflictError("payment has already been completed"))
	case errors.Is(err, ErrCheckoutBusy):
		core.JSONError(w, core.ConflictError("checkout is still being opened, try again"))
	case errors.Is(err, ErrInvalidSignature):
		core.BadRequest(w, "invalid webhook signature")
	case errors.Is(err, ErrNotConfigured):
		core.JSONError(w, core.NewAppError(
			err,
			"payments are not available right now",
			http.StatusServiceUnavailable,
			"PAYMENTS_UNAVAILABLE",
		))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "subscription")
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
