package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kwiktwik/video-editor/internal/api"
	"github.com/kwiktwik/video-editor/internal/auth"
	"github.com/kwiktwik/video-editor/internal/config"
	"github.com/kwiktwik/video-editor/internal/engine"
	"github.com/kwiktwik/video-editor/internal/media"
	"github.com/kwiktwik/video-editor/internal/storage"
	"github.com/kwiktwik/video-editor/internal/store"
	"github.com/kwiktwik/video-editor/internal/telemetry"
	"github.com/kwiktwik/video-editor/internal/worker"
)

func main() {
	cfg := config.Load()
	logger := telemetry.NewLogger(cfg.LogLevel)

	files, err := storage.NewLocal(cfg.DataDir)
	if err != nil {
		logger.Error("init storage failed", "error", err)
		os.Exit(1)
	}

	authSvc, err := auth.NewService(cfg.JWTSecret, cfg.AccessTTL, cfg.DemoEmail, cfg.DemoPassword)
	if err != nil {
		logger.Error("init auth failed", "error", err)
		os.Exit(1)
	}

	st := store.NewJobStore()

	// The mock media engine stands in for a real codec binding; swap it out
	// here to render against actual files.
	med := media.NewMock()
	fetcher := engine.NewHTTPFetcher(files.TempDir(), cfg.FetchTimeout)
	eng := engine.New(med, fetcher, files)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.New(st, eng, files.Resolve, logger, cfg.PollInterval, cfg.ErrorBackoff)
	go w.Run(ctx)

	srv := api.NewServer(authSvc, st, files, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("server_start", "addr", cfg.Addr, "demo_user", cfg.DemoEmail)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	logger.Info("server_stop")
}
