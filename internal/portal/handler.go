// Package portal serves the role dashboards behind the access gate.
package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/shared"
	"github.com/campusgate/campusgate/internal/view"
)

// Handler renders the per-role dashboard pages.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, templates: templates, csrf: csrf}
}

// MountRoutes registers the dashboard pages. Access control happens in
// the gate middleware; these handlers only render for whoever got through.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/super-admin/dashboard", h.dashboard("Super admin dashboard", directory.RoleSuperAdmin))
	r.Get("/admin/dept-admin/dashboard", h.dashboard("Department admin dashboard", directory.RoleDeptAdmin))
	r.Get("/faculty/dashboard", h.dashboard("Faculty dashboard", directory.RoleFaculty))
	r.Get("/student/dashboard", h.dashboard("Student dashboard", directory.RoleStudent))
	r.Get("/unauthorized", h.unauthorized)
}

func (h *Handler) dashboard(title string, area directory.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := session.ClaimsFromContext(r.Context())
		if claims == nil {
			http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
			return
		}
		csrfToken, _ := h.csrf.EnsureToken(w, r)
		data := view.TemplateData{
			Title:       title,
			CSRFToken:   csrfToken,
			CurrentPath: r.URL.Path,
			Claims:      claims,
			Data: map[string]any{
				"Area": area,
			},
		}
		h.render(w, "pages/dashboard.html", data)
	}
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	data := view.TemplateData{
		Title:       "Unauthorized",
		CurrentPath: r.URL.Path,
		Claims:      session.ClaimsFromContext(r.Context()),
	}
	w.WriteHeader(http.StatusForbidden)
	h.render(w, "pages/unauthorized.html", data)
}

func (h *Handler) render(w http.ResponseWriter, page string, data view.TemplateData) {
	if err := h.templates.Render(w, page, data); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
