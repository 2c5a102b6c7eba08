// Command server runs the shortlink web application.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shortlink/internal/bootstrap"
	"shortlink/internal/config"
	"shortlink/internal/middleware"
	"shortlink/internal/observability"
	"shortlink/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	demoUsers := flag.Int("demo-users", 0, "Seed this many demo users into an empty database (ignored in production)")
	demoLinks := flag.Int("demo-links", 3, "Links created per demo user")
	flag.Parse()

	// .env is optional; real deployments use the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := middleware.InitLogger(cfg.Env, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.SyncLogger()
	logger := middleware.Logger

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "shortlink",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{
		SeedDemoUsers: *demoUsers,
		DemoLinks:     *demoLinks,
	})
	if err != nil {
		logger.Fatal("failed to initialize runtime", zap.Error(err))
	}

	srv, err := server.NewServerWithDeps(cfg, db, redisClient, nil)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, srv, shutdownTracing, 10*time.Second); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is cancelled or the listener fails, then shuts the
// server down and flushes traces before returning.
func run(ctx context.Context, srv lifecycle, flush func(context.Context) error, grace time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	var err error
	select {
	case err = <-serveErr:
	case <-ctx.Done():
		middleware.Logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		middleware.Logger.Error("server shutdown error", zap.Error(serr))
	}
	if ferr := flush(shutdownCtx); ferr != nil {
		middleware.Logger.Error("tracer shutdown error", zap.Error(ferr))
	}
	return err
}
