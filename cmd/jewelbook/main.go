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
	"time"

	"github.com/unrolled/secure"

	"github.com/rbs-jewelers/jewelbook/internal/api"
	"github.com/rbs-jewelers/jewelbook/internal/config"
	"github.com/rbs-jewelers/jewelbook/internal/db"
	"github.com/rbs-jewelers/jewelbook/internal/ledger"
	"github.com/rbs-jewelers/jewelbook/internal/metrics"
	"github.com/rbs-jewelers/jewelbook/internal/store"
	"github.com/rbs-jewelers/jewelbook/internal/web"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging in the given format. INFO/WARN
// go to stdout, ERROR goes to stderr. If logPath is non-empty, all levels are
// also written to that file. Returns a cleanup function that closes the log
// file (if opened).
func setupLogger(logPath, format string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if format == config.LogJSON {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	handler := &levelRouter{
		stdout: newHandler(stdoutW),
		stderr: newHandler(stderrW),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

// openStore connects the configured backend. The returned function releases
// it.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageRedis:
		client, err := store.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("redis ready", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return store.NewRedisStore(client, cfg.RedisPrefix), func() { client.Close() }, nil
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("ensuring schema: %w", err)
		}
		slog.Info("database ready", "path", cfg.DBPath)
		return store.NewSQLiteStore(database), func() { database.Close() }, nil
	}
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.LogPath, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	l, err := ledger.Open(ctx, st, ledger.Options{})
	if err != nil {
		slog.Error("failed to load ledger", "error", err)
		os.Exit(1)
	}

	if cfg.Seed {
		added, err := l.SeedSample(ctx)
		if err != nil {
			slog.Error("failed to seed sample inventory", "error", err)
			os.Exit(1)
		}
		if added {
			slog.Info("sample inventory added")
		}
	}

	// Set up routers.
	apiRouter := api.NewRouter(l, api.Options{
		ExportPrefix: cfg.ExportPrefix,
		RateLimit:    cfg.RateLimit,
	})
	webRouter, err := web.NewRouter(l, web.Options{ExportPrefix: cfg.ExportPrefix})
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	// Combine: API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", webRouter)

	headers := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})
	handler := api.LoggingMiddleware(headers.Handler(mux))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "storage", cfg.Storage)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing storage")
}
