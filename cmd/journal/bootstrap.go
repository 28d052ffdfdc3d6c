package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"trade-journal/internal/interfaces"
	"trade-journal/internal/journal"
	"trade-journal/internal/journal/journalobs"
	"trade-journal/internal/logger"
	"trade-journal/internal/server"
	"trade-journal/internal/store"
)

// resolveConfigPath prefers the flag, then JOURNAL_CONFIG, then config.yaml or
// config.toml in the working directory. An empty result means defaults only.
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("JOURNAL_CONFIG"); v != "" {
		return v
	}
	for _, p := range []string{"config.yaml", "config.toml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// initializeSystem loads .env and config, then starts logging and tracing.
func initializeSystem(configFlag string) (*store.Config, error) {
	_ = godotenv.Load()

	cfg, err := store.LoadConfig(resolveConfigPath(configFlag))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.ServiceName); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// initializeStore picks the persistence backend. The returned closer is never
// nil.
func initializeStore(ctx context.Context, cfg *store.Config) (interfaces.TradeStore, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case store.BackendFile:
		st, err := store.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "Using file trade store", "dir", cfg.Storage.Dir)
		return st, noop, nil
	case store.BackendRedis:
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		st, err := store.NewRedisStore(pingCtx, store.RedisConfig{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			TTL:      time.Duration(cfg.Storage.Redis.TTLSeconds) * time.Second,
		})
		if err != nil {
			return nil, noop, err
		}
		logger.Info(ctx, "Using redis trade store", "addr", cfg.Storage.Redis.Addr, "db", cfg.Storage.Redis.DB)
		return st, func() { _ = st.Close() }, nil
	default:
		logger.Warn(ctx, "Using in-memory trade store - trades are lost on restart")
		return store.NewMemoryStore(), noop, nil
	}
}

// initializeJournal builds the journal with observability and restores any
// persisted trades. A failed restore starts the journal empty.
func initializeJournal(ctx context.Context, cfg *store.Config, st interfaces.TradeStore) (interfaces.Journal, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	j := journalobs.Wrap(journal.New(journal.Options{
		Store:    st,
		Key:      cfg.Storage.Key,
		Location: loc,
	}))
	_, _ = j.Restore(ctx)
	return j, nil
}

func initializeServer(cfg *store.Config, j interfaces.Journal) *http.Server {
	readTimeout := time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second
	writeTimeout := time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second

	srv := server.New(j, server.Options{
		ServiceName:    cfg.ServiceName,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: writeTimeout,
	})
	return &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Trade journal listening", "addr", srv.Addr,
			"tracing", logger.IsTracingEnabled(), "detailed_logging", logger.IsDebugEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info(shutdownCtx, "Shutting down trade journal")
	return srv.Shutdown(shutdownCtx)
}
