package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/observability"
	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/shared"
	"github.com/campusgate/campusgate/internal/view"
)

// Handler wires HTTP endpoints for the login and logout flows.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	codec         *session.Codec
	templates     *view.Engine
	csrfManager   *shared.CSRFManager
	metrics       *observability.Metrics
	validator     *validator.Validate
	strategy      Strategy
	secureCookies bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, codec *session.Codec, templates *view.Engine, csrf *shared.CSRFManager, metrics *observability.Metrics, strategy Strategy, secureCookies bool) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		codec:         codec,
		templates:     templates,
		csrfManager:   csrf,
		metrics:       metrics,
		validator:     validator.New(),
		strategy:      strategy,
		secureCookies: secureCookies,
	}
}

// MountRoutes registers auth routes on the provided router. The password
// and Google endpoints are mutually exclusive per deployment.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	if h.strategy == StrategyGoogle {
		r.Post("/google", h.handleGoogle)
	} else {
		r.With(h.requireCSRF).Post("/login", h.handleLogin)
	}
	r.With(h.requireCSRF).Post("/logout", h.handleLogout)
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	csrfToken, err := h.csrfManager.EnsureToken(w, r)
	if err != nil {
		h.logger.Error("mint csrf token", slog.Any("error", err))
	}
	h.renderLogin(w, r, csrfToken, "", http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	csrfToken, _ := h.csrfManager.EnsureToken(w, r)

	form := loginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(form); err != nil {
		h.metrics.ObserveLogin(string(StrategyPassword), "invalid_form")
		h.renderLogin(w, r, csrfToken, "Email or password is not valid", http.StatusBadRequest)
		return
	}

	assignment, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		// One generic message for unknown email and wrong password.
		h.metrics.ObserveLogin(string(StrategyPassword), "denied")
		h.renderLogin(w, r, csrfToken, "Email or password is not valid", http.StatusUnauthorized)
		return
	}

	if err := h.establishSession(w, assignment); err != nil {
		h.logger.Error("issue session token", slog.Any("error", err))
		h.renderLogin(w, r, csrfToken, "Sign-in is unavailable right now", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveLogin(string(StrategyPassword), "success")
	h.logger.Info("login", slog.String("email", assignment.Email), slog.String("role", string(assignment.Role)))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type googleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

func (h *Handler) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	assignment, err := h.service.AuthenticateGoogle(r.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, shared.ErrNoPrincipal) {
			// Verified assertion, but the email is not enrolled.
			h.metrics.ObserveLogin(string(StrategyGoogle), "access_denied")
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		h.metrics.ObserveLogin(string(StrategyGoogle), "denied")
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	if err := h.establishSession(w, assignment); err != nil {
		h.logger.Error("issue session token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.metrics.ObserveLogin(string(StrategyGoogle), "success")
	httpx.JSON(w, http.StatusOK, map[string]string{"redirect": "/"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
}

func (h *Handler) establishSession(w http.ResponseWriter, assignment *directory.Assignment) error {
	token, err := h.codec.Issue(session.FromAssignment(assignment))
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.codec.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *Handler) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if err := h.csrfManager.VerifyRequest(r); err != nil {
			h.logger.Warn("csrf validation failed", slog.String("path", r.URL.Path))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, csrfToken, errMsg string, status int) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	data := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Error:       errMsg,
	}
	if err := h.templates.Render(w, "pages/login.html", data); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
