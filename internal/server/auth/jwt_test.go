package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagebridge/stagebridge/internal/common"
)

const (
	testIssuer   = "user-service"
	testAudience = "ossrh-proxy"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func mintAssertion(t *testing.T, key *rsa.PrivateKey, issuer, audience string) string {
	t.Helper()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID:     "uid-1",
		NameCode:   "someuser",
		Namespaces: []string{"comexample", "orgother"},
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return assertion
}

func TestVerifier_Verify(t *testing.T) {
	key := newTestKey(t)
	verifier := NewVerifier(&key.PublicKey, testIssuer, testAudience)

	assertion := mintAssertion(t, key, testIssuer, testAudience)

	identity, err := verifier.Verify(assertion)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", identity.UserID)
	assert.Equal(t, "someuser", identity.Username)
	assert.Equal(t, []string{"comexample", "orgother"}, identity.Namespaces)
	assert.Equal(t, assertion, identity.Assertion())
}

func TestVerifier_Verify_Failures(t *testing.T) {
	key := newTestKey(t)
	verifier := NewVerifier(&key.PublicKey, testIssuer, testAudience)

	t.Run("wrong issuer", func(t *testing.T) {
		assertion := mintAssertion(t, key, "someone-else", testAudience)
		_, err := verifier.Verify(assertion)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("wrong audience", func(t *testing.T) {
		assertion := mintAssertion(t, key, testIssuer, "another-service")
		_, err := verifier.Verify(assertion)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := newTestKey(t)
		assertion := mintAssertion(t, other, testIssuer, testAudience)
		_, err := verifier.Verify(assertion)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		claims := identityClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				Audience:  jwt.ClaimStrings{testAudience},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			UserID: "uid-1",
		}
		assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
		require.NoError(t, err)

		_, err = verifier.Verify(assertion)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("hmac signed token rejected", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		assertion, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(assertion)
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.token")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrorUnauthorized)
	})
}
