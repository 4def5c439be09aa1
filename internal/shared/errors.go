package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure. It covers both an
	// unknown email and a wrong password so callers cannot distinguish them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoPrincipal indicates the email matched none of the identity stores.
	ErrNoPrincipal = errors.New("no principal for email")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrOTPInvalid occurs when a password-reset code is wrong or expired.
	ErrOTPInvalid = errors.New("invalid or expired otp")
	// ErrOTPNotVerified occurs when a reset is attempted before verification.
	ErrOTPNotVerified = errors.New("otp not verified")
)
