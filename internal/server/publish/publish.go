// Package publish ties the staging engine and the portal client together:
// finish a repository, serialize its archive, upload it downstream.
package publish

import (
	"context"
	"fmt"

	"github.com/stagebridge/stagebridge/internal/server/auth"
	"github.com/stagebridge/stagebridge/internal/server/portal"
	"github.com/stagebridge/stagebridge/internal/server/staging"
)

// deploymentNameSuffix marks deployments that were relayed through this
// gateway rather than uploaded directly.
const deploymentNameSuffix = " (via staging gateway)"

// Uploader is the portal edge of the pipeline.
type Uploader interface {
	Upload(ctx context.Context, creds portal.BearerCredentials, deploymentName string, publishingType portal.PublishingType, bundle []byte) (string, error)
}

// Publish finishes the staging repository and uploads the resulting bundle
// exactly once, authenticated as the original caller. Failures are not
// retried here: Finish has already destroyed the staging area, so a retry
// would need re-staging and belongs to the caller.
func Publish(ctx context.Context, uploader Uploader, repo staging.Repository, creds auth.Credentials, key staging.RepositoryKey, publishingType portal.PublishingType) (string, error) {
	archive, err := repo.Finish(ctx, key)
	if err != nil {
		return "", err
	}

	bundle, err := archive.Bytes()
	if err != nil {
		return "", fmt.Errorf("serializing archive for %s: %w", key, err)
	}

	name := key.RepositoryID() + deploymentNameSuffix
	return uploader.Upload(ctx, creds, name, publishingType, bundle)
}
