package httpapi

import (
	"net/http"

	"github.com/stagebridge/stagebridge/internal/server/portal"
	"github.com/stagebridge/stagebridge/internal/server/publish"
)

// handleManualUpload publishes the caller's profile-less staging repository
// on demand, with the publishing mode taken from the publishing_type query
// param. An absent or unrecognized value means user-managed.
func (s *Server) handleManualUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	publishingType := portal.ParsePublishingType(r.URL.Query().Get("publishing_type"))

	key, err := s.repo.OpenDefault(ctx, identity.UserID, clientAddr(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	deploymentID, err := publish.Publish(ctx, s.portal, s.repo, credentialsFrom(ctx), key, publishingType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(ctx, "manual upload published", "repository", key.String(), "deployment", deploymentID, "publishingType", string(publishingType))

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(deploymentID)); err != nil {
		s.log.Error(ctx, "writing response", "error", err)
	}
}
