// Package auth bridges the legacy Basic/Bearer authentication the staging
// protocol speaks onto the signed assertions the downstream services expect:
// header parsing, legacy token decoding, credential exchange and assertion
// verification.
package auth

import (
	"fmt"
	"strings"

	"github.com/stagebridge/stagebridge/internal/common"
)

// Scheme is an accepted Authorization scheme.
type Scheme string

const (
	SchemeBasic  Scheme = "Basic"
	SchemeBearer Scheme = "Bearer"
)

const (
	basicPrefix  = "Basic "
	bearerPrefix = "Bearer "
)

// ParseAuthorizationHeader splits an Authorization header into its scheme and
// token. Exactly two schemes are recognized, by case-sensitive prefix match;
// anything else (including an empty header) is an authentication failure.
func ParseAuthorizationHeader(raw string) (Scheme, string, error) {
	switch {
	case strings.HasPrefix(raw, basicPrefix):
		return SchemeBasic, strings.TrimPrefix(raw, basicPrefix), nil
	case strings.HasPrefix(raw, bearerPrefix):
		return SchemeBearer, strings.TrimPrefix(raw, bearerPrefix), nil
	default:
		return "", "", fmt.Errorf("%w: authorization header missing or not Basic/Bearer", common.ErrorUnauthorized)
	}
}
