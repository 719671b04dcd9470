package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/georgemunganga/hobex-pos/internal/config"
	"github.com/georgemunganga/hobex-pos/internal/database"
	"github.com/georgemunganga/hobex-pos/internal/modules/auth"
	"github.com/georgemunganga/hobex-pos/internal/modules/hobex"
	"github.com/georgemunganga/hobex-pos/internal/modules/payment"
	"github.com/georgemunganga/hobex-pos/internal/modules/terminal"
	"github.com/georgemunganga/hobex-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("INFO").Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to database", "driver", cfg.Database.Driver)

	// ── Repositories ────────────────────────────────────────
	terminalRepo, paymentRepo := repositories(cfg.Database.Driver, db)
	if err := terminalRepo.Migrate(ctx); err != nil {
		log.Error("failed to migrate terminals", "error", err)
		os.Exit(1)
	}
	if err := paymentRepo.Migrate(ctx); err != nil {
		log.Error("failed to migrate transactions", "error", err)
		os.Exit(1)
	}

	// ── Services ────────────────────────────────────────────
	hobexClient := hobex.NewClient(&http.Client{})
	terminalService := terminal.NewService(terminalRepo, hobexClient, terminal.Addresses{
		terminal.ModeTesting:    cfg.Hobex.TestingURL,
		terminal.ModeProduction: cfg.Hobex.ProductionURL,
	}, log)
	synchronizer := payment.NewSynchronizer(paymentRepo, hobexClient,
		payment.WithPollAttempts(cfg.Hobex.PollAttempts),
		payment.WithPollInterval(cfg.Hobex.PollInterval),
		payment.WithLogger(log),
	)
	paymentService := payment.NewService(terminalService, paymentRepo, synchronizer)
	authService := auth.NewService(cfg.Auth.OperatorUser, cfg.Auth.OperatorPasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/-/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/-/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	auth.NewHandler(authService).RegisterRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireToken(authService))
		terminal.NewHandler(terminalService).RegisterRoutes(r)
		if cfg.Hobex.Enabled {
			payment.NewHandler(paymentService).RegisterRoutes(r)
		}
	})

	// ── Background token refresh ────────────────────────────
	if cfg.Hobex.Enabled {
		go terminalService.RunTokenRefresher(ctx, cfg.Hobex.TokenRefreshInterval)
	} else {
		log.Info("hobex integration disabled")
	}

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("hobex pos api starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func repositories(driver string, db *sql.DB) (terminal.Repository, payment.Repository) {
	if driver == database.DriverSQLite {
		return terminal.NewSQLiteRepository(db), payment.NewSQLiteRepository(db)
	}
	return terminal.NewPostgresRepository(db), payment.NewPostgresRepository(db)
}
