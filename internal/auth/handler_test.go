package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/campusgate/campusgate/internal/auth"
	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/observability"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/shared"
	"github.com/campusgate/campusgate/internal/view"
)

func newLoginRig(t *testing.T, store *stubStore) (*chi.Mux, *session.Codec) {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)

	codec := session.NewCodec("handler-test-secret", 24*time.Hour)
	service := auth.NewService(directory.NewResolver(store), store, nil)
	handler := auth.NewHandler(
		slog.New(slog.DiscardHandler),
		service,
		codec,
		templates,
		shared.NewCSRFManager("csrf-test-secret", false),
		observability.NewMetrics(),
		auth.StrategyPassword,
		false,
	)

	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, codec
}

func fetchCSRF(t *testing.T, router *chi.Mux) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == shared.CSRFCookieName {
			return cookie
		}
	}
	t.Fatal("login page did not set a csrf cookie")
	return nil
}

func postLogin(router *chi.Mux, csrf *http.Cookie, email, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set(shared.CSRFFormField, csrf.Value)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	store := &stubStore{faculty: map[string]*directory.FacultyRecord{
		"prof@x.edu": {ID: 7, FullName: "Prof", Email: "prof@x.edu", PasswordHash: mustHash(t, "correct horse")},
	}}
	router, codec := newLoginRig(t, store)

	rec := postLogin(router, fetchCSRF(t, router), "prof@x.edu", "correct horse")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	require.True(t, sessionCookie.HttpOnly)

	claims, err := codec.Decode(sessionCookie.Value)
	require.NoError(t, err)
	require.Equal(t, directory.RoleFaculty, claims.Role)
	require.Equal(t, "prof@x.edu", claims.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	store := &stubStore{faculty: map[string]*directory.FacultyRecord{
		"prof@x.edu": {ID: 7, Email: "prof@x.edu", PasswordHash: mustHash(t, "correct horse")},
	}}
	router, _ := newLoginRig(t, store)

	rec := postLogin(router, fetchCSRF(t, router), "prof@x.edu", "wrong password")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Email or password is not valid")
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	router, _ := newLoginRig(t, &stubStore{})

	rec := postLogin(router, fetchCSRF(t, router), "ghost@x.edu", "whatever-it-is")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Email or password is not valid")
}

func TestLoginRejectedWithoutCSRF(t *testing.T) {
	store := &stubStore{faculty: map[string]*directory.FacultyRecord{
		"prof@x.edu": {ID: 7, Email: "prof@x.edu", PasswordHash: mustHash(t, "correct horse")},
	}}
	router, _ := newLoginRig(t, store)

	form := url.Values{}
	form.Set("email", "prof@x.edu")
	form.Set("password", "correct horse")
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsSessionCookie(t *testing.T) {
	router, _ := newLoginRig(t, &stubStore{})
	csrf := fetchCSRF(t, router)

	form := url.Values{}
	form.Set(shared.CSRFFormField, csrf.Value)
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "logout must expire the session cookie")
}
