// Package server wires the ledger server together: storage, the vault
// runtime, the gRPC endpoint, metrics and snapshots, and runs them until a
// shutdown signal arrives.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/seedvault/internal/auth"
	"github.com/dmitrijs2005/seedvault/internal/logging"
	"github.com/dmitrijs2005/seedvault/internal/server/config"
	gs "github.com/dmitrijs2005/seedvault/internal/server/grpc"
	"github.com/dmitrijs2005/seedvault/internal/server/ledger"
	"github.com/dmitrijs2005/seedvault/internal/server/metrics"
	"github.com/dmitrijs2005/seedvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seedvault/internal/server/services"
	"github.com/dmitrijs2005/seedvault/internal/server/snapshot"
	"github.com/dmitrijs2005/seedvault/internal/vault"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	repos     repomanager.RepositoryManager
	runtime   *ledger.Runtime
	collector *metrics.Collector
	grpc      *gs.GRPCServer
}

// NewApp opens storage, migrates it and builds every component. The caller
// owns the returned App and must call Run, which closes storage on exit.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	repos, err := repomanager.New(ctx, repomanager.Options{
		Backend:     c.StorageBackend,
		DatabaseDSN: c.DatabaseDSN,
		BoltPath:    c.BoltPath,
		TxRetries:   c.TxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	collector := metrics.NewCollector()
	programID := c.Program()

	rt := ledger.NewRuntime(repos, vault.NewProgram(programID, logger), ledger.Config{
		LamportsPerSignature: c.LamportsPerSignature,
		AirdropLimit:         c.AirdropLimit,
	}, logger, ledger.WithObserver(collector))

	locked, err := rt.LockedLamports(ctx)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("read locked lamports: %w", err)
	}
	collector.SetLocked(locked)

	svc, err := services.NewVaultService(rt, auth.NewVerifier(programID, c.RequestMaxAge), c.ReplayCacheSize, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	return &App{
		config:    c,
		logger:    logger,
		repos:     repos,
		runtime:   rt,
		collector: collector,
		grpc:      gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, collector),
	}, nil
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM/SIGQUIT arrives, or a
// component fails, and returns the first component error.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(ctx, "closing storage", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...",
		"backend", app.config.StorageBackend, "program", app.runtime.ProgramID().String())

	var snap *snapshot.Snapshotter
	if app.config.SnapshotInterval > 0 {
		client, err := snapshot.NewS3Client(ctx, snapshot.S3Settings{
			Region:       app.config.S3Region,
			User:         app.config.S3RootUser,
			Password:     app.config.S3RootPassword,
			BaseEndpoint: app.config.S3BaseEndpoint,
		})
		if err != nil {
			return err
		}
		snap = snapshot.NewSnapshotter(app.runtime, client, app.config.S3Bucket, app.logger)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.grpc.Run(ctx)
	})

	if app.config.EndpointAddrMetrics != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, app.config.EndpointAddrMetrics, app.collector, app.logger)
		})
	}

	if snap != nil {
		g.Go(func() error {
			return snap.Run(ctx, app.config.SnapshotInterval)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Main loads the configuration, builds the app and runs it.
func Main() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, err := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx := context.Background()
	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}
	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "server failed", "error", err)
		return 1
	}
	return 0
}
