package portal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/stagebridge/stagebridge/internal/common"
	"github.com/stagebridge/stagebridge/internal/logging"
)

const uploadPath = "/api/v1/publisher/upload"

// Client uploads bundles to the publishing service.
type Client struct {
	baseURL string
	client  *http.Client
	log     logging.Logger
}

func NewClient(baseURL string, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
		log:     log.With("module", "portal"),
	}
}

// BearerCredentials is anything that can authenticate an outbound call.
type BearerCredentials interface {
	BearerHeader() string
}

// Upload sends the bundle as a multipart POST and returns the opaque
// deployment id from the response body. Non-2xx responses fail with an
// upstream error; the client never retries.
func (c *Client) Upload(ctx context.Context, creds BearerCredentials, deploymentName string, publishingType PublishingType, bundle []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("bundle", "bundle.zip")
	if err != nil {
		return "", fmt.Errorf("%w: building upload body: %v", common.ErrorUpstream, err)
	}
	if _, err := part.Write(bundle); err != nil {
		return "", fmt.Errorf("%w: building upload body: %v", common.ErrorUpstream, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: building upload body: %v", common.ErrorUpstream, err)
	}

	query := url.Values{}
	query.Set("name", deploymentName)
	query.Set("publishingType", string(publishingType))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath+"?"+query.Encode(), &body)
	if err != nil {
		return "", fmt.Errorf("%w: building upload request: %v", common.ErrorUpstream, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", creds.BearerHeader())

	c.log.Debug(ctx, "uploading bundle", "name", deploymentName, "publishing_type", string(publishingType), "size", len(bundle))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: uploading bundle: %v", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading upload response: %v", common.ErrorUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: upload returned %d: %s", common.ErrorUpstream, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	deploymentID := strings.TrimSpace(string(respBody))
	c.log.Info(ctx, "bundle uploaded", "deployment_id", deploymentID)
	return deploymentID, nil
}
