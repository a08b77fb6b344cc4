package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/piwi3910/PalletLoad/internal/api"
	"github.com/piwi3910/PalletLoad/internal/config"
	"github.com/piwi3910/PalletLoad/internal/model"
	"github.com/piwi3910/PalletLoad/internal/planner"
	"github.com/piwi3910/PalletLoad/internal/project"
	"github.com/piwi3910/PalletLoad/internal/storage"
	"github.com/piwi3910/PalletLoad/internal/telemetry"
)

// Version is stamped into trace resources.
var Version = "dev"

// App encapsulates the application dependencies and HTTP server.
type App struct {
	sessions storage.SessionStore
	reports  storage.BlobStore
	planner  *planner.Service
	handler  *api.Handler
	router   http.Handler
	logger   *zap.Logger
	server   *http.Server
	listener net.Listener

	shutdownTracing func(context.Context) error
}

// New initializes the application with all dependencies from the provided configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	shutdownTracing, err := telemetry.Init(ctx, telemetry.Options{
		ServiceName:    "palletload",
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Stdout:         cfg.TraceStdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	catalog, err := LoadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	reports, err := NewReportStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sessions := storage.NewMemoryStore()
	svc, err := planner.New(planner.Options{
		Catalog:         catalog,
		MaxContainers:   cfg.MaxContainers,
		DefaultStackCap: cfg.DefaultStackCap,
		RunTimeout:      cfg.RunTimeout,
		Reports:         reports,
		Sessions:        sessions,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create planner: %w", err)
	}

	handler := api.NewHandler(svc, sessions, api.WithMaxUploadBytes(cfg.MaxUploadBytes))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return &App{
		sessions:        sessions,
		reports:         reports,
		planner:         svc,
		handler:         handler,
		router:          router,
		logger:          logger,
		server:          NewServer(cfg, router),
		shutdownTracing: shutdownTracing,
	}, nil
}

// LoadCatalog returns the configured catalog file, or the built-in catalog
// when none is configured.
func LoadCatalog(cfg config.Config) (model.ContainerCatalog, error) {
	if cfg.CatalogFile == "" {
		return model.DefaultCatalog(), nil
	}
	cat, err := project.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		return model.ContainerCatalog{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

// NewReportStore selects where generated reports go: S3 when a bucket is
// configured, else the report directory. Nil means reports are not stored.
func NewReportStore(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	switch {
	case cfg.S3Bucket != "":
		store, err := storage.NewS3StoreFromEnv(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 report store: %w", err)
		}
		return store, nil
	case cfg.ReportDir != "":
		return storage.NewLocalStore(cfg.ReportDir), nil
	default:
		return nil, nil
	}
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start binds the listener and serves in a goroutine. Bind errors are
// returned; serve errors after that are logged.
func (a *App) Start() error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.listener = ln

	go func() {
		a.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (a *App) Addr() string {
	if a.listener == nil {
		return a.server.Addr
	}
	return a.listener.Addr().String()
}

// Server returns the HTTP server instance.
func (a *App) Server() *http.Server {
	return a.server
}

// Shutdown drains the HTTP server, falling back to Close, then flushes traces.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := a.server.Close(); closeErr != nil {
			errs = append(errs, closeErr)
		}
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	return errors.Join(errs...)
}
