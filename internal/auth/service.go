// Package auth verifies login credentials against the identity stores and
// drives the session issuance flow.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/shared"
)

// Strategy selects how a deployment verifies credentials. Exactly one is
// active; they are never combined for a single attempt.
type Strategy string

const (
	StrategyPassword Strategy = "password"
	StrategyGoogle   Strategy = "google"
)

// GoogleVerifier validates an external identity assertion and returns its
// email claim.
type GoogleVerifier interface {
	VerifyEmail(idToken string) (string, error)
}

// Service wraps the credential verification rules.
type Service struct {
	resolver *directory.Resolver
	store    directory.Store
	google   GoogleVerifier
}

// NewService constructs a Service.
func NewService(resolver *directory.Resolver, store directory.Store, google GoogleVerifier) *Service {
	return &Service{resolver: resolver, store: store, google: google}
}

// Authenticate validates email/password credentials. Unknown email, NULL
// stored hash, and wrong password are indistinguishable to the caller, and
// any store failure fails closed the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*directory.Assignment, error) {
	assignment, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	hash, err := s.passwordHash(ctx, assignment.Role, email)
	if err != nil || hash == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return assignment, nil
}

// AuthenticateGoogle validates a Google ID token and requires its email to
// match a directory row. A verified assertion for an email outside the
// directory is a hard rejection, kept distinct from a credential mismatch.
func (s *Service) AuthenticateGoogle(ctx context.Context, idToken string) (*directory.Assignment, error) {
	if s.google == nil {
		return nil, fmt.Errorf("auth: google strategy not configured")
	}
	email, err := s.google.VerifyEmail(idToken)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	assignment, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNoPrincipal) {
			return nil, shared.ErrNoPrincipal
		}
		return nil, shared.ErrInvalidCredentials
	}
	return assignment, nil
}

// passwordHash fetches the stored hash from the store that won resolution.
// The resolver has already decided which store owns the email; this second
// read mirrors that decision.
func (s *Service) passwordHash(ctx context.Context, role directory.Role, email string) (string, error) {
	switch role {
	case directory.RoleFaculty, directory.RoleDeptAdmin:
		rec, err := s.store.FindFacultyByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		return rec.PasswordHash, nil
	case directory.RoleSuperAdmin:
		rec, err := s.store.FindSuperAdminByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		return rec.PasswordHash, nil
	case directory.RoleStudent:
		rec, err := s.store.FindStudentByEmail(ctx, email)
		if err != nil {
			return "", err
		}
		return rec.PasswordHash, nil
	default:
		return "", fmt.Errorf("auth: unknown role %q", role)
	}
}
