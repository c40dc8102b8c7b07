package httpapi

import (
	"net/http"
	"path"

	"github.com/stagebridge/stagebridge/internal/server/portal"
	"github.com/stagebridge/stagebridge/internal/server/publish"
	"github.com/stagebridge/stagebridge/internal/server/staging"
)

// metadataFile is generated by deploy plugins alongside the artifacts. The
// bundle upload endpoint rejects it, so it is acknowledged and dropped.
const metadataFile = "maven-metadata.xml"

func (s *Server) handleProfileEvaluate(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("g")
	doc := newStagingProfilesResponse(baseURL(r), []string{namespace})
	if err := respond(w, r, http.StatusOK, doc); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())
	base := baseURL(r)
	profiles := make([]stagingProfile, 0, len(identity.Namespaces))
	for _, ns := range identity.Namespaces {
		profiles = append(profiles, newStagingProfile(base, ns, base+"/service/local/staging/profiles/"+ns))
	}
	doc := stagingProfilesResponse{Data: profiles}
	if err := respond(w, r, http.StatusOK, doc); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profileID := r.PathValue("profileID")
	doc := newProfileResponse(baseURL(r), profileID)
	if err := respond(w, r, http.StatusOK, doc); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)
	profileID := r.PathValue("profileID")

	var req promoteRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := s.repo.Start(ctx, identity.UserID, clientAddr(r), profileID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(ctx, "staging repository started", "repository", key.String())

	doc := promoteResponse{Data: promoteResponseData{
		StagedRepositoryID: key.RepositoryID(),
		Description:        req.Data.Description,
	}}
	if err := respond(w, r, http.StatusCreated, doc); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	key, err := staging.ParseRepositoryID(identity.UserID, clientAddr(r), r.PathValue("repositoryID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.addFile(w, r, key, r.PathValue("filePath"))
}

func (s *Server) handleDeployGet(w http.ResponseWriter, r *http.Request) {
	// Deploy plugins probe for previously published metadata before
	// uploading. Nothing staged here is retrievable.
	http.NotFound(w, r)
}

func (s *Server) handleDeployDefault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	key, err := s.repo.OpenDefault(ctx, identity.UserID, clientAddr(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.addFile(w, r, key, r.PathValue("filePath"))
}

func (s *Server) addFile(w http.ResponseWriter, r *http.Request, key staging.RepositoryKey, filePath string) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	if path.Base(filePath) == metadataFile {
		s.log.Info(ctx, "skipping metadata file", "repository", key.String(), "path", filePath)
		w.WriteHeader(http.StatusCreated)
		return
	}

	if err := s.repo.AddFile(ctx, identity.Namespaces, key, filePath, r.Body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(ctx, "file staged", "repository", key.String(), "path", filePath)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var req promoteRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := staging.ParseRepositoryID(identity.UserID, clientAddr(r), req.Data.StagedRepositoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	deploymentID, err := publish.Publish(ctx, s.portal, s.repo, credentialsFrom(ctx), key, portal.Automatic)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info(ctx, "staging repository published", "repository", key.String(), "deployment", deploymentID)
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)
	repositoryID := r.PathValue("repositoryID")

	key, err := staging.ParseRepositoryID(identity.UserID, clientAddr(r), repositoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	state, err := s.repo.GetState(ctx, key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := newStagingRepositoryResponse(baseURL(r), repositoryID, state.String())
	if err := respond(w, r, http.StatusOK, doc); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleBulkPromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var req stagingActionRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	for _, id := range req.Data.StagedRepositoryIDs {
		key, err := staging.ParseRepositoryID(identity.UserID, clientAddr(r), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.repo.Release(ctx, key); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Info(ctx, "staging repository released", "repository", key.String())
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleBulkClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := identityFrom(ctx)

	var req stagingActionRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	for _, id := range req.Data.StagedRepositoryIDs {
		key, err := staging.ParseRepositoryID(identity.UserID, clientAddr(r), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		deploymentID, err := publish.Publish(ctx, s.portal, s.repo, credentialsFrom(ctx), key, portal.Automatic)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.log.Info(ctx, "staging repository published", "repository", key.String(), "deployment", deploymentID)
	}
	w.WriteHeader(http.StatusCreated)
}
