package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iudanet/calcbread/internal/crypto"
	"github.com/iudanet/calcbread/internal/server/config"
	"github.com/iudanet/calcbread/internal/server/handlers"
	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/jwt"
	"github.com/iudanet/calcbread/internal/server/service"
	"github.com/iudanet/calcbread/internal/server/storage"
	"github.com/iudanet/calcbread/internal/server/storage/postgres"
	"github.com/iudanet/calcbread/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion()
		os.Exit(0)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logger := newLogger(os.Stdout, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.UsesDefaultSecret() {
		logger.Warn("SECRET_KEY is not set, using the insecure development secret")
	}

	store, err := openStorage(ctx, cfg.DatabaseURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	tokens := jwt.NewService([]byte(cfg.SecretKey), cfg.TokenTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:       logger,
		Auth:         service.NewAuthService(logger, store, crypto.NewHasher(cfg.BcryptCost), tokens),
		Calculations: service.NewCalculationService(logger, store),
		Resolver:     identity.NewResolver(logger, tokens, store),
		DB:           store,
		Registry:     registry,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.Addr),
			slog.String("version", Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// openStorage выбирает backend по схеме URI
func openStorage(ctx context.Context, uri string) (storage.Storage, error) {
	if postgres.IsPostgresURI(uri) {
		pg, err := postgres.New(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("postgres storage: %w", err)
		}
		return pg, nil
	}

	lite, err := sqlite.New(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: %w", err)
	}
	return lite, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	// Уровень уже проверен в config.Validate
	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printVersion() {
	fmt.Printf("Calcbread Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
