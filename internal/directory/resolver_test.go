package directory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/shared"
	_ "github.com/campusgate/campusgate/testing"
)

type stubStore struct {
	faculty    map[string]*directory.FacultyRecord
	superAdmin map[string]*directory.SuperAdminRecord
	students   map[string]*directory.StudentRecord
	failWith   error
}

func (s *stubStore) FindFacultyByEmail(ctx context.Context, email string) (*directory.FacultyRecord, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if rec, ok := s.faculty[email]; ok {
		return rec, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubStore) FindSuperAdminByEmail(ctx context.Context, email string) (*directory.SuperAdminRecord, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if rec, ok := s.superAdmin[email]; ok {
		return rec, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubStore) FindStudentByEmail(ctx context.Context, email string) (*directory.StudentRecord, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if rec, ok := s.students[email]; ok {
		return rec, nil
	}
	return nil, shared.ErrNotFound
}

func TestResolveFaculty(t *testing.T) {
	store := &stubStore{
		faculty: map[string]*directory.FacultyRecord{
			"fac1@x.edu": {ID: 7, FullName: "Dr. Ada Lovelace", Email: "fac1@x.edu"},
		},
	}
	assignment, err := directory.NewResolver(store).Resolve(context.Background(), "fac1@x.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assignment.Role != directory.RoleFaculty {
		t.Fatalf("expected faculty role, got %q", assignment.Role)
	}
	if assignment.ID != 7 || assignment.DisplayName != "Dr. Ada Lovelace" {
		t.Fatalf("unexpected assignment: %+v", assignment)
	}
}

func TestResolveDeptAdminPromotion(t *testing.T) {
	store := &stubStore{
		faculty: map[string]*directory.FacultyRecord{
			"dept1@x.edu": {ID: 3, FullName: "Prof. Grace Hopper", Email: "dept1@x.edu", IsDeptAdmin: true},
		},
	}
	assignment, err := directory.NewResolver(store).Resolve(context.Background(), "dept1@x.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assignment.Role != directory.RoleDeptAdmin {
		t.Fatalf("expected dept_admin role, got %q", assignment.Role)
	}
}

func TestResolveStudentCarriesRollNumber(t *testing.T) {
	store := &stubStore{
		students: map[string]*directory.StudentRecord{
			"stu1@x.edu": {ID: 42, FullName: "Alan Turing", Email: "stu1@x.edu", RollNumber: "CS-2024-042"},
		},
	}
	assignment, err := directory.NewResolver(store).Resolve(context.Background(), "stu1@x.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assignment.Role != directory.RoleStudent {
		t.Fatalf("expected student role, got %q", assignment.Role)
	}
	if assignment.RollNumber != "CS-2024-042" {
		t.Fatalf("expected roll number, got %q", assignment.RollNumber)
	}
}

// An email present in both the faculty and student stores must always
// resolve to the faculty-derived role.
func TestResolvePriorityFacultyOverStudent(t *testing.T) {
	store := &stubStore{
		faculty: map[string]*directory.FacultyRecord{
			"both@x.edu": {ID: 1, FullName: "Faculty Row", Email: "both@x.edu"},
		},
		students: map[string]*directory.StudentRecord{
			"both@x.edu": {ID: 2, FullName: "Student Row", Email: "both@x.edu", RollNumber: "R-1"},
		},
	}
	assignment, err := directory.NewResolver(store).Resolve(context.Background(), "both@x.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assignment.Role != directory.RoleFaculty || assignment.ID != 1 {
		t.Fatalf("expected faculty row to win, got %+v", assignment)
	}
	if assignment.RollNumber != "" {
		t.Fatalf("faculty assignment must not carry a roll number")
	}
}

func TestResolveSuperAdminOverStudent(t *testing.T) {
	store := &stubStore{
		superAdmin: map[string]*directory.SuperAdminRecord{
			"root@x.edu": {ID: 1, FullName: "Root", Email: "root@x.edu"},
		},
		students: map[string]*directory.StudentRecord{
			"root@x.edu": {ID: 9, FullName: "Shadowed", Email: "root@x.edu"},
		},
	}
	assignment, err := directory.NewResolver(store).Resolve(context.Background(), "root@x.edu")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if assignment.Role != directory.RoleSuperAdmin {
		t.Fatalf("expected super_admin, got %q", assignment.Role)
	}
}

func TestResolveUnknownEmailFailsClosed(t *testing.T) {
	_, err := directory.NewResolver(&stubStore{}).Resolve(context.Background(), "nobody@x.edu")
	if !errors.Is(err, shared.ErrNoPrincipal) {
		t.Fatalf("expected ErrNoPrincipal, got %v", err)
	}
}

func TestResolveStoreFailureAborts(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := directory.NewResolver(&stubStore{failWith: boom}).Resolve(context.Background(), "fac1@x.edu")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
