package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/campusgate/campusgate/internal/app"
	"github.com/campusgate/campusgate/internal/auth"
	"github.com/campusgate/campusgate/internal/directory"
	"github.com/campusgate/campusgate/internal/gate"
	"github.com/campusgate/campusgate/internal/observability"
	"github.com/campusgate/campusgate/internal/otp"
	"github.com/campusgate/campusgate/internal/platform/cache"
	"github.com/campusgate/campusgate/internal/platform/db"
	"github.com/campusgate/campusgate/internal/portal"
	"github.com/campusgate/campusgate/internal/session"
	"github.com/campusgate/campusgate/internal/shared"
	"github.com/campusgate/campusgate/internal/view"
	"github.com/campusgate/campusgate/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.Open(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret, cfg.IsProduction())
	metrics := observability.NewMetrics()

	directoryClient := directory.NewClient(pool)
	resolver := directory.NewResolver(directoryClient)

	codec := session.NewCodec(cfg.SessionSecret, cfg.SessionTTL)
	refresher := session.NewRefresher(directoryClient, logger)

	var google auth.GoogleVerifier
	if cfg.AuthStrategy == "google" {
		google = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}
	authService := auth.NewService(resolver, directoryClient, google)
	authHandler := auth.NewHandler(logger, authService, codec, templates, csrfManager, metrics, auth.Strategy(cfg.AuthStrategy), cfg.IsProduction())

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	otpService := otp.NewService(resolver, directoryClient, redisClient, jobsClient, logger)
	otpHandler := otp.NewHandler(logger, otpService, templates, csrfManager)

	portalHandler := portal.NewHandler(logger, templates, csrfManager)
	accessGate := gate.New(logger, codec, refresher, metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		AuthHandler:   authHandler,
		OTPHandler:    otpHandler,
		PortalHandler: portalHandler,
		Gate:          accessGate,
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
