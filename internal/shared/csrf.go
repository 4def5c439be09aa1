package shared

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const (
	// CSRFCookieName is the cookie carrying the issued token.
	CSRFCookieName = "cg_csrf"
	// CSRFFormField is the form field name carrying the CSRF token.
	CSRFFormField = "csrf_token"
	// CSRFHeaderName is the header alternative for JSON clients.
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFManager issues and verifies double-submit CSRF tokens. The session
// itself is a stateless signed cookie, so the token is not stored server
// side: it is a random nonce bound to an HMAC over the nonce.
type CSRFManager struct {
	secret []byte
	secure bool
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string, secure bool) *CSRFManager {
	return &CSRFManager{secret: []byte(secret), secure: secure}
}

// EnsureToken returns the request's CSRF token, minting and setting the
// cookie when none is present yet.
func (m *CSRFManager) EnsureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil && m.validToken(cookie.Value) {
		return cookie.Value, nil
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(nonce) + "." + m.sign(nonce)
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// VerifyRequest compares the submitted token against the cookie token.
func (m *CSRFManager) VerifyRequest(r *http.Request) error {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil || cookie.Value == "" {
		return ErrCSRFTokenMissing
	}
	submitted := r.PostFormValue(CSRFFormField)
	if submitted == "" {
		submitted = r.Header.Get(CSRFHeaderName)
	}
	if submitted == "" {
		return ErrCSRFTokenMissing
	}
	if !m.validToken(cookie.Value) || !hmac.Equal([]byte(cookie.Value), []byte(submitted)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) validToken(token string) bool {
	nonceB64, mac, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	nonce, err := base64.RawURLEncoding.DecodeString(nonceB64)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(m.sign(nonce)), []byte(mac))
}

func (m *CSRFManager) sign(nonce []byte) string {
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
