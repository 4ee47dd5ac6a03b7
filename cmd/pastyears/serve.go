package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/config"
	"github.com/sloppy/pastyears/internal/db"
	"github.com/sloppy/pastyears/internal/logging"
	"github.com/sloppy/pastyears/internal/web"
)

const (
	sessionPurgeInterval = time.Hour
	shutdownTimeout      = 10 * time.Second
)

func runServe(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	cfgPath := fs.String("config", "", "path to config file")
	apiURL := fs.String("api", "", "questions API base URL")
	dbPath := fs.String("db", "", "path to database file")
	addr := fs.String("addr", "", "address to listen on")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(errOut, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, cfg, logger, out); err != nil {
		logger.Error("serve", zap.Error(err))
		fmt.Fprintf(errOut, "serve: %v\n", err)
		return 1
	}
	return 0
}

// serve runs the web frontend until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := newClient(cfg, logger, api.WithMetrics(api.NewMetrics(registry)))
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer database.Close()

	server := web.NewServer(client, database, web.Options{
		Logger:         logger,
		Registry:       registry,
		SessionTTL:     cfg.HTTP.SessionTTL,
		SecureCookie:   cfg.HTTP.SecureCookie,
		PostsPerMinute: cfg.HTTP.PostsPerMinute,
	})
	if _, err := server.PurgeIdleSessions(ctx); err != nil {
		logger.Warn("purge sessions", zap.Error(err))
	}
	go purgeLoop(ctx, server, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	fmt.Fprintf(out, "listening on http://%s (api %s)\n", cfg.HTTP.Addr, client.BaseURL())
	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr), zap.String("api", client.BaseURL()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func purgeLoop(ctx context.Context, server *web.Server, logger *zap.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := server.PurgeIdleSessions(ctx); err != nil {
				logger.Warn("purge sessions", zap.Error(err))
			}
		}
	}
}
