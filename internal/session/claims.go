// Package session issues and decodes the stateless signed claims bundle
// handed to the client after login.
package session

import (
	"github.com/campusgate/campusgate/internal/directory"
)

// Claims is the resolved identity carried by a session token. It never
// contains a credential secret.
type Claims struct {
	ID          int64
	Email       string
	DisplayName string
	Role        directory.Role
	RollNumber  string // students only
}

// FromAssignment copies the resolved identity into a claims bundle.
func FromAssignment(a *directory.Assignment) *Claims {
	return &Claims{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role,
		RollNumber:  a.RollNumber,
	}
}
