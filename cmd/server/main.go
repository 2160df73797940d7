// File manager server
//
// Serves a single storage root over HTTP:
// - Folder listings, recent files, trash listing
// - Folder creation, move to trash, multipart uploads
// - Raw file downloads with Range support
// - SSE change stream
// - Prometheus metrics & structured logging (zap)
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Ulyk04/file-manager/internal/api"
	"github.com/Ulyk04/file-manager/internal/config"
	"github.com/Ulyk04/file-manager/internal/events"
	"github.com/Ulyk04/file-manager/internal/logging"
	"github.com/Ulyk04/file-manager/internal/metrics"
	"github.com/Ulyk04/file-manager/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Can't use structured logging yet
		panic("configuration error: " + err.Error())
	}

	// Initialize structured logging
	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("file manager starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr),
		zap.String("root", cfg.StorageRoot))

	store, err := storage.New(cfg.StorageRoot, cfg.TrashDir)
	if err != nil {
		logging.Fatal("storage init failed", zap.Error(err))
	}
	logging.Info("storage ready",
		zap.String("root", store.Root()),
		zap.String("trash", store.TrashRoot()))

	broadcaster := events.NewBroadcaster()
	srv := api.NewServer(store, broadcaster, cfg)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}
	// Open SSE streams would otherwise hold Shutdown until the timeout.
	httpServer.RegisterOnShutdown(broadcaster.Close)

	servers := []*http.Server{httpServer}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: metrics.Handler(),
		})
	} else {
		logging.Warn("metrics listener disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logging.Info("server listening", zap.String("addr", s.Addr))
			if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("listener failed", logging.String("addr", s.Addr), logging.Err(err))
				return err
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		logging.Info("shutting down...", logging.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				logging.Error("shutdown incomplete", logging.String("addr", s.Addr), logging.Err(err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logging.Fatal("server error", zap.Error(err))
	}
	logging.Info("server stopped")
}
