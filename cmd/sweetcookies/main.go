package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/auth"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/config"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/db"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/transport"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg)

	log.Info().Str("storage", cfg.Storage.Driver).Msg("SweetCookies starting...")

	ctx := context.Background()

	var (
		orderRepo order.Repository
		userRepo  user.Repository
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pg, err := db.New(connectCtx, cfg.Postgres)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pg.Close()

		if err := pg.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}

		orderRepo = order.NewRepository(pg.SQL)
		userRepo = user.NewRepository(pg.Pool)
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		orderRepo = order.NewMemoryRepository()
		userRepo = user.NewMemoryRepository()
	}

	orderSvc := order.NewService(orderRepo)
	userSvc := user.NewService(userRepo)

	if cfg.Auth.AdminUsername != "" {
		admin, created, err := userSvc.EnsureUser(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap admin user")
		}
		log.Info().Str("username", admin.Username).Bool("created", created).Msg("Admin user ready")
	} else if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("No ADMIN_USERNAME configured, nobody can log in to in-memory storage")
	}

	router := transport.NewRouter(cfg, transport.Dependencies{
		Orders:   orderSvc,
		Users:    userSvc,
		Sessions: auth.NewManager(cfg.Auth),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	if cfg.App.OpenBrowser {
		go openBrowser("http://localhost:" + cfg.App.Port + "/health")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
		return
	}
	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.Log.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log.Logger = log.With().Str("service", cfg.App.Name).Logger()
}

func openBrowser(url string) {
	time.Sleep(time.Second)
	if err := browser.OpenURL(url); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
	}
}
