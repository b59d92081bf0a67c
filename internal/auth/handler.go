// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/middleware"
)

type Handler struct {
	service   *Service
	cookie    middleware.SessionCookie
	validator *validator.Validate
}

func NewHandler(service *Service, cookie middleware.SessionCookie) *Handler {
	return &Handler{
		service:   service,
		cookie:    cookie,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the auth endpoints. recoveryLimit throttles the
// password recovery endpoints, which are unauthenticated and send mail.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	recoveryLimit func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/signin", h.Signin)
		r.Post("/signout", h.Signout)
		r.Get("/session", h.Session)

		r.Group(func(r chi.Router) {
			r.Use(recoveryLimit)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/{token}", h.ResetPassword)
		})
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, toUserResponse(user))
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	result, err := h.service.Signin(r.Context(), req, h.clientMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.Unauthorized(w, "invalid email or password")
		case errors.Is(err, core.ErrAccountBlocked):
			h.cookie.Clear(w)
			core.JSONError(w, core.AccountBlockedError())
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	h.cookie.Set(w, result.Token)
	core.OK(w, SigninResponse{
		User:         toUserResponse(result.User),
		IsFirstLogin: result.IsFirstLogin,
		Token:        result.Token,
		ExpiresIn:    int(h.cookie.TTL.Seconds()),
	})
}

func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Signout(r.Context(), h.cookie.Token(r)); err != nil {
		core.InternalServerError(w, err)
		return
	}

	h.cookie.Clear(w)
	core.OK(w, MessageResponse{Message: "signed out"})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	token := h.cookie.Token(r)
	status := h.service.SessionStatus(r.Context(), token)
	if !status.Authenticated && token != "" {
		h.cookie.Clear(w)
	}

	core.OK(w, status)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "if an account matches, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		core.BadRequest(w, "reset token required")
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if err := h.service.ResetPassword(r.Context(), token, req); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			core.BadRequest(w, "invalid or expired token")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "password has been reset"})
}

func (h *Handler) clientMeta(r *http.Request) ClientMeta {
	return ClientMeta{
		UserAgent:     r.UserAgent(),
		IPAddress:     middleware.ClientIP(r),
		PreviousToken: h.cookie.Token(r),
	}
}
