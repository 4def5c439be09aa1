package auth

import (
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// googleIDTokenVerifier checks a Google ID token's signature and audience
// before trusting its email claim.
type googleIDTokenVerifier struct {
	clientID string
}

// NewGoogleVerifier returns a GoogleVerifier bound to the deployment's
// OAuth client id.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleIDTokenVerifier{clientID: clientID}
}

func (g *googleIDTokenVerifier) VerifyEmail(idToken string) (string, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return "", fmt.Errorf("auth: verify id token: %w", err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return "", fmt.Errorf("auth: decode id token: %w", err)
	}
	if claimSet.Email == "" {
		return "", fmt.Errorf("auth: id token carries no email claim")
	}
	return claimSet.Email, nil
}
