package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/session"
	_ "github.com/campusgate/campusgate/testing"
)

func TestIssueDecodeRoundTrip(t *testing.T) {
	codec := session.NewCodec("secret", 24*time.Hour)
	token, err := codec.Issue(&session.Claims{
		ID:          42,
		Email:       "stu1@x.edu",
		DisplayName: "Alan Turing",
		Role:        directory.RoleStudent,
		RollNumber:  "CS-2024-042",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.ID != 42 || claims.Role != directory.RoleStudent || claims.RollNumber != "CS-2024-042" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.DisplayName != "Alan Turing" || claims.Email != "stu1@x.edu" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

// A token issued at T stays valid until T+TTL and is rejected afterwards.
func TestTokenExpiryWindow(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	codec := session.NewCodec("secret", 24*time.Hour)
	codec.SetNowForTest(func() time.Time { return issuedAt })

	token, err := codec.Issue(&session.Claims{ID: 1, Email: "fac1@x.edu", Role: directory.RoleFaculty})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	codec.SetNowForTest(func() time.Time { return issuedAt.Add(23 * time.Hour) })
	if _, err := codec.Decode(token); err != nil {
		t.Fatalf("token should still be valid at T+23h: %v", err)
	}

	codec.SetNowForTest(func() time.Time { return issuedAt.Add(24*time.Hour + time.Minute) })
	if _, err := codec.Decode(token); !errors.Is(err, session.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid after expiry, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	codec := session.NewCodec("secret", time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := codec.Decode(token); !errors.Is(err, session.ErrTokenInvalid) {
			t.Fatalf("token %q: expected ErrTokenInvalid, got %v", token, err)
		}
	}
}

func TestDecodeRejectsForeignSignature(t *testing.T) {
	token, err := session.NewCodec("secret-a", time.Hour).Issue(&session.Claims{ID: 1, Role: directory.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := session.NewCodec("secret-b", time.Hour).Decode(token); !errors.Is(err, session.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}
