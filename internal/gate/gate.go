// Package gate enforces the portal's route-access rules ahead of every
// handler. Decisions are made from the decoded session token alone; the
// only I/O is the student claims refresh performed at decode time. Every
// failure mode is a redirect, never an error surfaced to the client.
package gate

import (
	"log/slog"
	"net/http"

	"github.com/campusgate/campusgate/internal/observability"
	"github.com/campusgate/campusgate/internal/session"
)

const (
	signInPath       = "/auth/login"
	unauthorizedPath = "/unauthorized"
)

// Gate is the request-interception layer gating protected prefixes.
type Gate struct {
	logger    *slog.Logger
	codec     *session.Codec
	refresher *session.Refresher
	metrics   *observability.Metrics
	rules     []Rule
}

// New constructs a Gate over the default rule table.
func New(logger *slog.Logger, codec *session.Codec, refresher *session.Refresher, metrics *observability.Metrics) *Gate {
	return &Gate{
		logger:    logger,
		codec:     codec,
		refresher: refresher,
		metrics:   metrics,
		rules:     DefaultRules(),
	}
}

// Middleware decodes the session cookie and applies the rule table.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := g.decode(r)
		if claims != nil {
			r = r.WithContext(session.ContextWithClaims(r.Context(), claims))
		}

		path := r.URL.Path
		if !Protected(path) {
			next.ServeHTTP(w, r)
			return
		}

		if claims == nil {
			g.metrics.ObserveGateRedirect("unauthenticated")
			http.Redirect(w, r, signInPath, http.StatusSeeOther)
			return
		}

		if path == "/" {
			home, ok := HomePath(claims.Role)
			if !ok {
				// A token with a role the table does not know goes back
				// through sign-in.
				g.metrics.ObserveGateRedirect("unknown_role")
				http.Redirect(w, r, signInPath, http.StatusSeeOther)
				return
			}
			http.Redirect(w, r, home, http.StatusSeeOther)
			return
		}

		if rule, ok := matchRule(g.rules, path); ok && !rule.Allows(claims.Role) {
			g.metrics.ObserveGateRedirect("forbidden")
			g.logger.Info("gate forbidden",
				slog.String("path", path),
				slog.String("role", string(claims.Role)))
			http.Redirect(w, r, unauthorizedPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// decode extracts and verifies the session cookie. A missing, corrupt, or
// expired token yields nil: the request proceeds as unauthenticated.
func (g *Gate) decode(r *http.Request) *session.Claims {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	claims, err := g.codec.Decode(cookie.Value)
	if err != nil {
		return nil
	}
	if g.refresher != nil {
		claims = g.refresher.Refresh(r.Context(), claims)
	}
	return claims
}
