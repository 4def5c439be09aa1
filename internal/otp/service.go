// Package otp implements the password-reset flow: a one-time code mailed
// to a known principal, verified, and exchanged for a password update.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/shared"
)

const (
	codeLength = 6
	codeTTL    = 10 * time.Minute
)

// Mailer queues a message for asynchronous delivery.
type Mailer interface {
	EnqueueMail(ctx context.Context, to, subject, body string) error
}

// Service issues, verifies, and consumes one-time reset codes. Codes live
// in Redis under a short TTL; the relational stores are only touched for
// the final password write.
type Service struct {
	resolver *directory.Resolver
	store    directory.PasswordStore
	redis    *redis.Client
	mailer   Mailer
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(resolver *directory.Resolver, store directory.PasswordStore, client *redis.Client, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{resolver: resolver, store: store, redis: client, mailer: mailer, logger: logger}
}

// Request issues a reset code for email. Unknown emails return
// shared.ErrNoPrincipal; the handler surfaces that as a 404 (the reset
// flow intentionally confirms enrollment, unlike login).
func (s *Service) Request(ctx context.Context, email string) error {
	if _, err := s.resolver.Resolve(ctx, email); err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("otp: generate code: %w", err)
	}
	if err := s.redis.Set(ctx, codeKey(email), code, codeTTL).Err(); err != nil {
		return fmt.Errorf("otp: store code: %w", err)
	}

	body := fmt.Sprintf("Your CampusGate password reset code is %s. It expires in %d minutes.", code, int(codeTTL.Minutes()))
	if err := s.mailer.EnqueueMail(ctx, email, "CampusGate password reset", body); err != nil {
		return fmt.Errorf("otp: enqueue mail: %w", err)
	}
	s.logger.Info("otp requested", slog.String("email", email))
	return nil
}

// Verify checks a submitted code and marks the email as cleared for reset.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	stored, err := s.redis.Get(ctx, codeKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrOTPInvalid
		}
		return fmt.Errorf("otp: load code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return shared.ErrOTPInvalid
	}
	if err := s.redis.Set(ctx, verifiedKey(email), "1", codeTTL).Err(); err != nil {
		return fmt.Errorf("otp: mark verified: %w", err)
	}
	return nil
}

// Reset replaces the stored password hash for a verified email and
// consumes the code.
func (s *Service) Reset(ctx context.Context, email, newPassword string) error {
	if err := s.redis.Get(ctx, verifiedKey(email)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrOTPNotVerified
		}
		return fmt.Errorf("otp: load verified marker: %w", err)
	}

	assignment, err := s.resolver.Resolve(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("otp: hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, assignment.Role, email, string(hash)); err != nil {
		return fmt.Errorf("otp: update password: %w", err)
	}

	if err := s.redis.Del(ctx, codeKey(email), verifiedKey(email)).Err(); err != nil {
		s.logger.Warn("otp cleanup failed", slog.String("email", email), slog.Any("error", err))
	}
	s.logger.Info("password reset", slog.String("email", email), slog.String("role", string(assignment.Role)))
	return nil
}

func codeKey(email string) string {
	return "otp:" + email
}

func verifiedKey(email string) string {
	return "otpok:" + email
}

func generateCode() (string, error) {
	const digits = "0123456789"
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = digits[int(buf[i])%len(digits)]
	}
	return string(buf), nil
}
