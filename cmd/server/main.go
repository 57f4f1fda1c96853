package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/smallwat3r/stealthpad/internal/app"
	"github.com/smallwat3r/stealthpad/internal/config"
	"github.com/smallwat3r/stealthpad/internal/decoy"
	"github.com/smallwat3r/stealthpad/internal/diag"
	"github.com/smallwat3r/stealthpad/internal/gate"
	"github.com/smallwat3r/stealthpad/internal/notify"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stealthpad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// fail closed: no keypad without a valid code pair
	uc, err := cfg.UnlockConfig()
	if err != nil {
		return err
	}

	logs, err := diag.Setup(cfg.LogLevel, cfg.DiagnosticLog, "server")
	if err != nil {
		return err
	}
	defer logs.Close()
	log := logs.Process

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := connectRedis(ctx, cfg)
	if err != nil {
		if cfg.StoreBackend == config.BackendRedis {
			return err
		}
		log.Warn().Err(err).Msg("redis unavailable, keypad rate limiting disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	store, closer, err := vault.Open(cfg, rdb)
	if err != nil {
		return err
	}
	defer closer.Close()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.BackendURL != "" {
		notifier = notify.NewClient(cfg.BackendURL, cfg.NotifyTimeout)
	}

	screen := gate.NewSignal()
	g, err := gate.Build(uc, gate.Deps{
		Store:     store,
		Notifier:  notifier,
		Navigator: screen,
		Log:       logs.Diagnostic,
	})
	if err != nil {
		return err
	}
	defer g.Close()

	handler := app.NewHandler(g, screen, store, decoy.NewStatic(decoy.Page{}), log)

	var limiter *app.RateLimiterMiddleware
	if rdb != nil {
		limiter = app.NewRateLimiter(rdb, app.DefaultRateLimitConfig())
	}
	router := app.NewRouter(handler, app.RouterConfig{
		RequireHTTPS: cfg.RequireHTTPS,
		RateLimiter:  limiter,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.StoreBackend).
			Stringer("window", uc.Window).
			Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	opt, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}
