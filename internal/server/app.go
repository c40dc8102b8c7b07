// Package server initializes and runs the staging gateway application.
// It wires the staging backend, the credential bridge, the portal client
// and the HTTP server, and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/stagebridge/stagebridge/internal/logging"
	"github.com/stagebridge/stagebridge/internal/server/auth"
	"github.com/stagebridge/stagebridge/internal/server/config"
	"github.com/stagebridge/stagebridge/internal/server/httpapi"
	"github.com/stagebridge/stagebridge/internal/server/portal"
	"github.com/stagebridge/stagebridge/internal/server/staging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	slog := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slog)

	repo, err := newStagingBackend(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("staging backend init error: %w", err)
	}

	verifier, err := auth.NewVerifierFromKeyFile(c.JWTPublicKeyFile, c.JWTIssuer, c.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("verifier init error: %w", err)
	}

	exchanger := auth.NewHTTPExchanger(c.UserServiceURL, logger)
	portalClient := portal.NewClient(c.PortalURL, logger)

	srv := httpapi.NewServer(c.EndpointAddr, repo, portalClient, verifier, exchanger, logger)
	srv.SetShutdownTimeout(c.ShutdownTimeout)

	return &App{config: c, logger: logger, server: srv}, nil
}

func newStagingBackend(ctx context.Context, c *config.Config, logger logging.Logger) (staging.Repository, error) {
	switch c.StagingBackend {
	case "s3":
		return staging.NewS3Repository(ctx, staging.S3Options{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		}, logger)
	case "local":
		return staging.NewLocalRepository(c.StagingRoot, logger)
	default:
		return nil, fmt.Errorf("unknown staging backend: %s", c.StagingBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
