package session_test

import (
	"context"
	"testing"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/shared"
	_ "github.com/campusgate/campusgate/testing"
)

type stubStudents struct {
	rec   *directory.StudentRecord
	err   error
	calls int
}

func (s *stubStudents) FindStudentByEmail(ctx context.Context, email string) (*directory.StudentRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rec, nil
}

func TestStudentClaimsRefreshedFromStore(t *testing.T) {
	students := &stubStudents{rec: &directory.StudentRecord{
		ID:         42,
		FullName:   "Alan M. Turing",
		Email:      "stu1@x.edu",
		RollNumber: "CS-2024-101",
	}}
	refresher := session.NewRefresher(students, nil)

	stale := &session.Claims{
		ID:          42,
		Email:       "stu1@x.edu",
		DisplayName: "Alan Turing",
		Role:        directory.RoleStudent,
		RollNumber:  "CS-2024-042",
	}
	fresh := refresher.Refresh(context.Background(), stale)
	if fresh.RollNumber != "CS-2024-101" || fresh.DisplayName != "Alan M. Turing" {
		t.Fatalf("expected refreshed values, got %+v", fresh)
	}
	// The token-derived claims themselves stay untouched.
	if stale.RollNumber != "CS-2024-042" {
		t.Fatalf("input claims mutated: %+v", stale)
	}
}

// Faculty claims keep their issued values mid-session even when the store
// row changed.
func TestFacultyClaimsNotRefreshed(t *testing.T) {
	students := &stubStudents{}
	refresher := session.NewRefresher(students, nil)

	claims := &session.Claims{ID: 7, Email: "fac1@x.edu", DisplayName: "Old Name", Role: directory.RoleFaculty}
	got := refresher.Refresh(context.Background(), claims)
	if got != claims {
		t.Fatalf("faculty claims must pass through unchanged")
	}
	if students.calls != 0 {
		t.Fatalf("faculty refresh must not hit the store, got %d calls", students.calls)
	}
}

func TestRefreshFailureKeepsTokenValues(t *testing.T) {
	students := &stubStudents{err: shared.ErrNotFound}
	refresher := session.NewRefresher(students, nil)

	claims := &session.Claims{ID: 42, Email: "stu1@x.edu", Role: directory.RoleStudent, RollNumber: "CS-2024-042"}
	got := refresher.Refresh(context.Background(), claims)
	if got.RollNumber != "CS-2024-042" {
		t.Fatalf("expected stale values on refresh failure, got %+v", got)
	}
}
