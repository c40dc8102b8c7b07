package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stagebridge/stagebridge/internal/common"
	"github.com/stagebridge/stagebridge/internal/logging"
)

// Exchanger swaps legacy credentials for a signed assertion from the
// identity service.
type Exchanger interface {
	Exchange(ctx context.Context, token UserToken) (string, error)
}

// HTTPExchanger talks to the identity service over HTTP: it presents the
// legacy pair as Basic auth and receives the signed assertion as the response
// body.
type HTTPExchanger struct {
	baseURL string
	client  *http.Client
	log     logging.Logger
}

func NewHTTPExchanger(baseURL string, log logging.Logger) *HTTPExchanger {
	return &HTTPExchanger{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		log:     log.With("module", "exchanger"),
	}
}

func (e *HTTPExchanger) Exchange(ctx context.Context, token UserToken) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/v1/token", nil)
	if err != nil {
		return "", fmt.Errorf("%w: building exchange request: %v", common.ErrorUpstream, err)
	}
	req.Header.Set("Authorization", "Basic "+token.encoded())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: exchanging credentials: %v", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading exchange response: %v", common.ErrorUpstream, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return strings.TrimSpace(string(body)), nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		e.log.Debug(ctx, "identity service rejected credentials", "status", resp.StatusCode, "user", token.Username)
		return "", fmt.Errorf("%w: identity service rejected credentials", common.ErrorUnauthorized)
	default:
		return "", fmt.Errorf("%w: identity service returned %d", common.ErrorUpstream, resp.StatusCode)
	}
}
