package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/campusgate/campusgate/internal/directory"
)

// CookieName is the cookie carrying the session token.
const CookieName = "cg_session"

// ErrTokenInvalid covers every decode failure: missing, corrupt, expired,
// or signed with the wrong key. The gate treats all of them as an
// unauthenticated request.
var ErrTokenInvalid = errors.New("session token invalid")

type tokenClaims struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	RollNumber  string `json:"roll_number,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs claims into compact tokens and decodes them back. Expiry is
// fixed at issuance, not sliding.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec constructs a Codec signing with secret for the given lifetime.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL exposes the configured token lifetime.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// SetNowForTest overrides the codec clock for expiry tests.
func (c *Codec) SetNowForTest(now func() time.Time) {
	c.now = now
}

// Issue signs a claims bundle into a compact token.
func (c *Codec) Issue(claims *Claims) (string, error) {
	now := c.now()
	payload := tokenClaims{
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        string(claims.Role),
		RollNumber:  claims.RollNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and returns the claims.
func (c *Codec) Decode(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}
	var payload tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &payload, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	id, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return &Claims{
		ID:          id,
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		Role:        directory.Role(payload.Role),
		RollNumber:  payload.RollNumber,
	}, nil
}
