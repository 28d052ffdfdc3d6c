package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trade-journal/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()

	cfg, err := initializeSystem(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = logger.Shutdown(shutdownCtx)
	}()

	st, closeStore, err := initializeStore(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize trade store", err, "backend", cfg.Storage.Backend)
		os.Exit(1)
	}
	defer closeStore()

	j, err := initializeJournal(ctx, cfg, st)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to initialize journal", err)
		os.Exit(1)
	}

	if err := serve(ctx, initializeServer(cfg, j)); err != nil {
		logger.ErrorWithErr(ctx, "Server stopped with error", err)
		os.Exit(1)
	}
	logger.Info(context.Background(), "Trade journal stopped")
}
