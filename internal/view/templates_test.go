package view_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/view"
	_ "github.com/campusgate/campusgate/testing"
)

func TestRenderAllPages(t *testing.T) {
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	claims := &session.Claims{
		ID:          1,
		Email:       "stu@x.edu",
		DisplayName: "Ada Lovelace",
		Role:        directory.RoleStudent,
		RollNumber:  "2024CSB001",
	}

	pages := []string{
		"pages/login.html",
		"pages/dashboard.html",
		"pages/unauthorized.html",
		"pages/forgot_password.html",
	}
	for _, page := range pages {
		rec := httptest.NewRecorder()
		err := engine.Render(rec, page, view.TemplateData{
			Title:     "Test",
			CSRFToken: "token",
			Claims:    claims,
		})
		if err != nil {
			t.Fatalf("render %s: %v", page, err)
		}
		if !strings.Contains(rec.Body.String(), "CampusGate") {
			t.Fatalf("%s missing layout chrome", page)
		}
	}
}

func TestDashboardShowsRoleLabel(t *testing.T) {
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	rec := httptest.NewRecorder()
	err = engine.Render(rec, "pages/dashboard.html", view.TemplateData{
		Title: "Dashboard",
		Claims: &session.Claims{
			DisplayName: "Grace Hopper",
			Email:       "head@x.edu",
			Role:        directory.RoleDeptAdmin,
		},
	})
	if err != nil {
		t.Fatalf("render dashboard: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "dept admin") {
		t.Fatalf("role label not rendered: %s", rec.Body.String())
	}
}
