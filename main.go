package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-password/password"

	"cinelist/api"
	"cinelist/config"
	"cinelist/handlers"
	"cinelist/internal/auth"
	"cinelist/internal/database"
	"cinelist/internal/logging"
	"cinelist/services/accounts"
	"cinelist/services/metadata"
	"cinelist/services/recommendations"
	"cinelist/services/watchlist"
	"cinelist/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "gen-secret" {
		secret, err := newSecret()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate secret: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(secret)
		return
	}

	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// newSecret returns a random value suitable for JWT_SECRET.
func newSecret() (string, error) {
	return password.Generate(64, 10, 0, false, true)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCloser := logging.Setup(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer logCloser.Close()
	log := slog.Default().With("component", "server")

	handlers.SetDebugErrors(cfg.IsDevelopment())

	db, err := database.NewDB(database.Config{DatabasePath: cfg.DatabasePath})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	router, closers, err := buildRouter(cfg, db)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env, "database", cfg.DatabasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildRouter wires repositories, services and handlers on top of db. The
// returned closers release background workers owned by the router.
func buildRouter(cfg config.Config, db *database.DB) (http.Handler, []io.Closer, error) {
	conn := db.Connection()
	users := database.NewUserRepository(conn)
	entries := database.NewWatchlistRepository(conn)

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("token issuer: %w", err)
	}

	client := metadata.NewClient(metadata.Config{
		BaseURL:           cfg.Provider.BaseURL,
		APIKey:            cfg.Provider.APIKey,
		Timeout:           cfg.Provider.Timeout,
		RetryAttempts:     cfg.Provider.RetryAttempts,
		RetryDelay:        cfg.Provider.RetryDelay,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		CacheTTL:          cfg.Provider.CacheTTL,
	})

	accountsSvc := accounts.NewService(users)
	metadataSvc := metadata.NewService(client)
	watchlistSvc := watchlist.NewService(entries)
	recsSvc := recommendations.NewService(metadataSvc, watchlistSvc)
	recsSvc.SetMaxWorkers(cfg.RecommendationWorkers)
	if cfg.PersistRecommendations {
		recsSvc.SetStore(database.NewRecommendationRepository(conn))
	}

	static, err := handlers.NewStaticHandler(cfg.StaticDir)
	if err != nil {
		return nil, nil, fmt.Errorf("static assets: %w", err)
	}

	limiter := api.PerMinute(cfg.Auth.RatePerMinute)
	router := api.NewRouter(api.RouterConfig{
		Origins:     utils.NewOriginPolicy(cfg.CORSAllowedOrigins),
		Health:      db.Ping,
		Tokens:      tokens,
		AuthLimiter: limiter,
		Logger:      slog.Default().With("component", "http"),
	}, api.Handlers{
		Auth:            handlers.NewAuthHandler(accountsSvc, tokens),
		Movies:          handlers.NewMoviesHandler(metadataSvc),
		Watchlist:       handlers.NewWatchlistHandler(watchlistSvc),
		Recommendations: handlers.NewRecommendationsHandler(recsSvc),
		Static:          static,
	})
	return router, []io.Closer{limiterCloser{limiter}}, nil
}

type limiterCloser struct{ rl *api.IPRateLimiter }

func (c limiterCloser) Close() error {
	c.rl.Close()
	return nil
}
