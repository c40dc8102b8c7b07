package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentials_BearerHeader(t *testing.T) {
	t.Run("from assertion", func(t *testing.T) {
		creds := CredentialsFromAssertion("abc.def.ghi")
		assert.Equal(t, "Bearer abc.def.ghi", creds.BearerHeader())
	})

	t.Run("from user token", func(t *testing.T) {
		creds := CredentialsFromUserToken(NewUserToken("user", "pass"))
		want := "Bearer " + base64.StdEncoding.EncodeToString([]byte("user:pass"))
		assert.Equal(t, want, creds.BearerHeader())
	})
}
