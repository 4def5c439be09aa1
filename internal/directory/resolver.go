package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/campusgate/campusgate/internal/shared"
)

// lookup probes one identity store. It returns (nil, nil) when the store
// has no row for the email; any error is an infrastructure failure and
// aborts resolution (fail closed).
type lookup func(ctx context.Context, email string) (*Assignment, error)

// Resolver derives the single authoritative role for an email. The probe
// order is a deliberate behavioral contract: faculty (promoted to
// dept_admin when flagged) shadows super admin, which shadows student.
// An email present in two stores silently resolves to the earlier one.
type Resolver struct {
	chain []lookup
}

// NewResolver constructs a Resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{chain: []lookup{
		facultyLookup(store),
		superAdminLookup(store),
		studentLookup(store),
	}}
}

// Resolve returns the assignment for email, or shared.ErrNoPrincipal when
// no identity store knows it.
func (r *Resolver) Resolve(ctx context.Context, email string) (*Assignment, error) {
	for _, probe := range r.chain {
		assignment, err := probe(ctx, email)
		if err != nil {
			return nil, err
		}
		if assignment != nil {
			return assignment, nil
		}
	}
	return nil, shared.ErrNoPrincipal
}

func facultyLookup(store Store) lookup {
	return func(ctx context.Context, email string) (*Assignment, error) {
		rec, err := store.FindFacultyByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("resolve faculty: %w", err)
		}
		role := RoleFaculty
		if rec.IsDeptAdmin {
			role = RoleDeptAdmin
		}
		return &Assignment{
			Role:        role,
			ID:          rec.ID,
			Email:       rec.Email,
			DisplayName: rec.FullName,
		}, nil
	}
}

func superAdminLookup(store Store) lookup {
	return func(ctx context.Context, email string) (*Assignment, error) {
		rec, err := store.FindSuperAdminByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("resolve super admin: %w", err)
		}
		return &Assignment{
			Role:        RoleSuperAdmin,
			ID:          rec.ID,
			Email:       rec.Email,
			DisplayName: rec.FullName,
		}, nil
	}
}

func studentLookup(store Store) lookup {
	return func(ctx context.Context, email string) (*Assignment, error) {
		rec, err := store.FindStudentByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, nil
			}
			return nil, fmt.Errorf("resolve student: %w", err)
		}
		return &Assignment{
			Role:        RoleStudent,
			ID:          rec.ID,
			Email:       rec.Email,
			DisplayName: rec.FullName,
			RollNumber:  rec.RollNumber,
		}, nil
	}
}
