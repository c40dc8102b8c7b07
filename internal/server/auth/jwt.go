package auth

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stagebridge/stagebridge/internal/common"
)

// Identity is the result of successful authentication. It is immutable for
// the duration of a request and carries both the authorization data
// (namespaces) and the verified assertion needed to re-authenticate outbound
// calls as the same principal.
type Identity struct {
	UserID     string
	Username   string
	Namespaces []string
	assertion  string
}

// Assertion returns the raw verified token.
func (i *Identity) Assertion() string {
	return i.assertion
}

// AssertionVerifier checks a signed assertion and produces the caller's
// identity.
type AssertionVerifier interface {
	Verify(assertion string) (*Identity, error)
}

// Verifier validates RS256 assertions issued by the identity service. Both
// the issuer and the audience are exact allow-listed values; any mismatch is
// a verification failure even when the signature is valid.
type Verifier struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
}

func NewVerifier(key *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{key: key, issuer: issuer, audience: audience}
}

// NewVerifierFromKeyFile loads a PEM-encoded RSA public key from path.
func NewVerifierFromKeyFile(path, issuer, audience string) (*Verifier, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading verification key %s: %w", path, err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing verification key %s: %w", path, err)
	}
	return NewVerifier(key, issuer, audience), nil
}

// identityClaims mirrors the identity service's token payload.
type identityClaims struct {
	jwt.RegisteredClaims
	UserID     string   `json:"userId"`
	NameCode   string   `json:"nameCode"`
	Namespaces []string `json:"namespaces"`
}

func (v *Verifier) Verify(assertion string) (*Identity, error) {
	claims := &identityClaims{}

	_, err := jwt.ParseWithClaims(assertion, claims,
		func(t *jwt.Token) (any, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: assertion verification failed: %v", common.ErrorUnauthorized, err)
	}

	return &Identity{
		UserID:     claims.UserID,
		Username:   claims.NameCode,
		Namespaces: claims.Namespaces,
		assertion:  assertion,
	}, nil
}
