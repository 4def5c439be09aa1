package otp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/shared"
	"github.com/campusgate/campusgate/internal/view"
)

// Handler wires the JSON endpoints of the password-reset flow plus the
// page that drives them.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
		validator: validator.New(),
	}
}

// MountRoutes registers the reset endpoints on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/forgot-password", h.showForgotPassword)
	r.With(h.requireCSRF).Post("/forgot-password", h.handleRequest)
	r.With(h.requireCSRF).Post("/forgot-password/verify", h.handleVerify)
	r.With(h.requireCSRF).Post("/forgot-password/reset", h.handleReset)
}

func (h *Handler) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			// JSON clients double-submit via the X-CSRF-Token header.
			if err := h.csrf.VerifyRequest(r); err != nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := h.csrf.VerifyRequest(r); err != nil {
			h.logger.Warn("csrf validation failed", slog.String("path", r.URL.Path))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) showForgotPassword(w http.ResponseWriter, r *http.Request) {
	csrfToken, _ := h.csrf.EnsureToken(w, r)
	data := view.TemplateData{
		Title:       "Reset password",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
	}
	if err := h.templates.Render(w, "pages/forgot_password.html", data); err != nil {
		h.logger.Error("render forgot password", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type requestBody struct {
	Email string `json:"email" validate:"required,email"`
}

// decodeBody accepts either a JSON body or the server-rendered form.
func decodeBody(r *http.Request, target any, fromForm func(*http.Request)) error {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return httpx.DecodeJSON(r, target)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r)
	return nil
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	var body requestBody
	if err := decodeBody(r, &body, func(r *http.Request) {
		body.Email = r.PostFormValue("email")
	}); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Request(r.Context(), body.Email); err != nil {
		if errors.Is(err, shared.ErrNoPrincipal) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("otp request", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

type verifyBody struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body verifyBody
	if err := decodeBody(r, &body, func(r *http.Request) {
		body.Email = r.PostFormValue("email")
		body.OTP = r.PostFormValue("otp")
	}); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Verify(r.Context(), body.Email, body.OTP); err != nil {
		if errors.Is(err, shared.ErrOTPInvalid) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid OTP", "invalid or expired otp")
			return
		}
		h.logger.Error("otp verify", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "OTP verified successfully"})
}

type resetBody struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var body resetBody
	if err := decodeBody(r, &body, func(r *http.Request) {
		body.Email = r.PostFormValue("email")
		body.NewPassword = r.PostFormValue("new_password")
	}); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Reset(r.Context(), body.Email, body.NewPassword); err != nil {
		switch {
		case errors.Is(err, shared.ErrOTPNotVerified):
			httpx.Problem(w, http.StatusBadRequest, "OTP Not Verified", "verify the otp first")
		case errors.Is(err, shared.ErrNoPrincipal):
			httpx.RespondError(w, httpx.ErrNotFound)
		default:
			h.logger.Error("otp reset", slog.Any("error", err))
			httpx.RespondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
