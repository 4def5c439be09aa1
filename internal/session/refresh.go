package session

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/campusgate/campusgate/internal/directory"
)

// StudentReader is the single read path the refresh policy needs.
type StudentReader interface {
	FindStudentByEmail(ctx context.Context, email string) (*directory.StudentRecord, error)
}

// Refresher implements the role-specific refresh policy: student claims are
// re-read from the store on every decode so a roll-number change propagates
// without re-login; every other role keeps its issued values until expiry.
type Refresher struct {
	students StudentReader
	logger   *slog.Logger
	group    singleflight.Group
}

// NewRefresher constructs a Refresher.
func NewRefresher(students StudentReader, logger *slog.Logger) *Refresher {
	return &Refresher{students: students, logger: logger}
}

// Refresh returns the claims to use for this request. A failed store read
// keeps the token values; staleness is preferred over a forced logout.
func (r *Refresher) Refresh(ctx context.Context, claims *Claims) *Claims {
	if claims == nil || claims.Role != directory.RoleStudent || r.students == nil {
		return claims
	}
	rec, err, _ := r.group.Do(claims.Email, func() (any, error) {
		return r.students.FindStudentByEmail(ctx, claims.Email)
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("student refresh failed", slog.String("email", claims.Email), slog.Any("error", err))
		}
		return claims
	}
	student := rec.(*directory.StudentRecord)
	fresh := *claims
	fresh.DisplayName = student.FullName
	fresh.RollNumber = student.RollNumber
	return &fresh
}
