package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docmark/internal/api"
	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/dgallion1/docmark/internal/project"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := project.NewStore(cfg.DataDir)
	if err != nil {
		log.Error("open project store", "error", err, "data_dir", cfg.DataDir)
		os.Exit(1)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		log.Error("listen", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting docmark",
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"workers", cfg.WorkerCount,
		"max_nesting_depth", cfg.MaxNestingDepth,
	)
	if err := serve(sigCtx, httpServer, ln, orch, log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// serve runs srv on ln until ctx is cancelled. Shutdown drains in-flight
// requests first and then stops the job queue; serve returns only after
// both are done.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, queue interface{ Stop() }, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		queue.Stop()
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http serve", "error", err)
	}

	queue.Stop()
	return shutdownErr
}
