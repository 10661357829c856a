// Package server wires the coordinator together: it opens the metadata and
// object stores once, builds the services and runs the HTTP API next to the
// gRPC health endpoint until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/dmitrijs2005/studyvault/internal/server/config"
	"github.com/dmitrijs2005/studyvault/internal/server/httpapi"
	"github.com/dmitrijs2005/studyvault/internal/server/ids"
	"github.com/dmitrijs2005/studyvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/studyvault/internal/server/services"
	"github.com/dmitrijs2005/studyvault/internal/server/storage"

	gs "github.com/dmitrijs2005/studyvault/internal/server/grpc"
)

// Seams for tests.
var (
	openRepositories = repomanager.Open
	openObjectStore  = func(ctx context.Context, c *config.Config) (storage.ObjectStore, error) {
		if c.MetadataBackend == config.BackendMemory && c.S3BaseEndpoint == "" {
			return storage.NewMemoryStore(), nil
		}
		return storage.NewS3Store(ctx, storage.S3Config{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
			UsePathStyle: c.S3UsePathStyle,
		})
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	handler *httpapi.Handler
}

// NewApp opens the stores, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	repos, err := openRepositories(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("metadata store init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := openObjectStore(ctx, c)
	if err != nil {
		_ = repos.Close(ctx)
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	deps := services.Deps{
		StoreTimeout:  c.StoreTimeout,
		GrantTTL:      c.GrantTTL,
		PublicBaseURL: c.PublicBaseURL,
	}
	alloc := ids.Random{}

	handler := httpapi.NewHandler(
		services.NewUploadService(store, repos.Files(), alloc, deps, logger),
		services.NewContentService(store, repos.Files(), deps, logger),
		services.NewLifecycleService(store, repos.Files(), deps, logger),
		services.NewFolderService(repos.Folders(), alloc, deps, logger),
		repos,
		logger,
	)

	return &App{config: c, logger: logger, repos: repos, handler: handler}, nil
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
	routes := app.handler.Routes(
		httpapi.RequestLogger(app.logger),
		httpapi.Metrics(),
		httpapi.Attribution([]byte(app.config.SecretKey), app.config.RequireAuth, "/healthz", "/metrics"),
	)

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, routes, app.config.ShutdownTimeout, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) newGRPCServer() *gs.GRPCServer {
	return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.repos.Ping, app.config.HealthInterval)
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := app.newGRPCServer()
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.MetadataBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.repos.Close(context.Background()); err != nil {
		app.logger.Error(ctx, "metadata store close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
