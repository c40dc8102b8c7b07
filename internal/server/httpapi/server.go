// Package httpapi exposes the legacy staging protocol over HTTP and glues
// it to the staging engine, the credential bridge and the publish pipeline.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stagebridge/stagebridge/internal/logging"
	"github.com/stagebridge/stagebridge/internal/server/auth"
	"github.com/stagebridge/stagebridge/internal/server/publish"
	"github.com/stagebridge/stagebridge/internal/server/staging"
)

const defaultShutdownTimeout = 5 * time.Second

type Server struct {
	address         string
	log             logging.Logger
	repo            staging.Repository
	portal          publish.Uploader
	verifier        auth.AssertionVerifier
	exchanger       auth.Exchanger
	shutdownTimeout time.Duration
}

func NewServer(address string, repo staging.Repository, portal publish.Uploader,
	verifier auth.AssertionVerifier, exchanger auth.Exchanger, log logging.Logger) *Server {
	return &Server{
		address:         address,
		log:             log.With("module", "httpapi"),
		repo:            repo,
		portal:          portal,
		verifier:        verifier,
		exchanger:       exchanger,
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// SetShutdownTimeout overrides how long Run waits for in-flight requests to
// drain.
func (s *Server) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		s.shutdownTimeout = d
	}
}

// Handler builds the route table. Everything under the staging prefix and
// the manual upload endpoint require authentication; the status document
// does not. Anything else gets the legacy server's catch-all 401.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /service/local/status", s.handleStatus)

	authed := http.NewServeMux()
	authed.HandleFunc("GET /service/local/staging/profile_evaluate", s.handleProfileEvaluate)
	authed.HandleFunc("GET /service/local/staging/profiles", s.handleProfiles)
	authed.HandleFunc("GET /service/local/staging/profiles/{profileID}", s.handleProfile)
	authed.HandleFunc("POST /service/local/staging/profiles/{profileID}/start", s.handleStart)
	authed.HandleFunc("POST /service/local/staging/profiles/{profileID}/finish", s.handleFinish)
	authed.HandleFunc("PUT /service/local/staging/deployByRepositoryId/{repositoryID}/{filePath...}", s.handleDeploy)
	authed.HandleFunc("GET /service/local/staging/deployByRepositoryId/{repositoryID}/{filePath...}", s.handleDeployGet)
	authed.HandleFunc("PUT /service/local/staging/deploy/maven2/{filePath...}", s.handleDeployDefault)
	authed.HandleFunc("GET /service/local/staging/repository/{repositoryID}", s.handleRepository)
	authed.HandleFunc("POST /service/local/staging/bulk/promote", s.handleBulkPromote)
	authed.HandleFunc("POST /service/local/staging/bulk/close", s.handleBulkClose)
	authed.HandleFunc("POST /manual/upload", s.handleManualUpload)
	authed.HandleFunc("/", s.handleFallback)

	mux.Handle("/service/local/staging/", s.withAuth(authed))
	mux.Handle("/manual/", s.withAuth(authed))

	mux.HandleFunc("/", s.handleFallback)

	return s.withRequestID(mux)
}

// handleFallback mimics the legacy server, which answers every unknown path
// with an authentication challenge rather than a 404.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	s.log.Warn(r.Context(), "unhandled request", "method", r.Method, "uri", r.URL.Path)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// Run serves until the context is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
