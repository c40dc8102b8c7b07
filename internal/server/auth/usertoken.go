package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stagebridge/stagebridge/internal/common"
)

// UserToken is a decoded legacy token: the long-lived username/password pair
// carried inside a Basic header. The password never leaves this package
// except re-encoded into an outbound credential.
type UserToken struct {
	Username string
	password string
}

func NewUserToken(username, password string) UserToken {
	return UserToken{Username: username, password: password}
}

// ParseUserToken decodes a legacy token: base64, then UTF-8, then a single
// split on the first ':'. Each stage fails with its own error kind so the
// operator can tell a transport problem from a mangled token.
func ParseUserToken(token string) (UserToken, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return UserToken{}, fmt.Errorf("%w: %v", common.ErrTokenNotBase64, err)
	}
	if !utf8.Valid(raw) {
		return UserToken{}, common.ErrTokenNotUTF8
	}

	username, password, found := strings.Cut(string(raw), ":")
	if !found {
		return UserToken{}, common.ErrTokenMalformed
	}

	return UserToken{Username: username, password: password}, nil
}

// encoded re-packs the pair the way the legacy protocol transports it.
func (t UserToken) encoded() string {
	return base64.StdEncoding.EncodeToString([]byte(t.Username + ":" + t.password))
}
