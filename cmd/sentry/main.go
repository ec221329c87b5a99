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

	"github.com/Aminhimat/sentry-command-link-sub001/internal/app"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/approvals"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/auth"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/checkpoints"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/companies"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/geofence"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/guards"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/incidents"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/observability"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/overview"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/cache"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/platform/db"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/properties"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shared"
	"github.com/Aminhimat/sentry-command-link-sub001/internal/shifts"
	"github.com/Aminhimat/sentry-command-link-sub001/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessions := shared.NewSessionStore(redisClient, cfg.SessionTTL)
	authmw := auth.NewMiddleware(sessions)
	auditLogger := shared.NewAuditLogger(dbpool)
	metrics := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)

	guardRepo := guards.NewRepository(dbpool)
	guardService := guards.NewService(guardRepo)
	guardHandler := guards.NewHandler(logger, guardService, authmw)

	authHandler := auth.NewHandler(logger, authService, sessions, guardService)

	alerts := jobs.NewAlertClient(jobClient, dbpool)
	geofenceService := geofence.NewService(logger, guardRepo, sessions, alerts, metrics, cfg.GeofenceThresholdMiles)
	geofenceHandler := geofence.NewHandler(logger, geofenceService, sessions)

	approvalService := approvals.NewService(logger, guardRepo, auditLogger)
	approvalHandler := approvals.NewHandler(logger, approvalService, authmw)

	companyRepo := companies.NewRepository(dbpool)
	companyHandler := companies.NewHandler(logger, companyRepo, authmw)

	propertyRepo := properties.NewRepository(dbpool)
	propertyHandler := properties.NewHandler(logger, propertyRepo, authmw)

	checkpointRepo := checkpoints.NewRepository(dbpool)
	checkpointHandler := checkpoints.NewHandler(logger, checkpointRepo, authmw)

	shiftRepo := shifts.NewRepository(dbpool)
	shiftService := shifts.NewService(
		shiftRepo,
		shifts.PropertyRepoLocator{Repo: propertyRepo},
		shifts.CheckpointRepoResolver{Repo: checkpointRepo},
		cfg.ClockInRadiusMiles,
		logger,
	)
	shiftHandler := shifts.NewHandler(logger, shiftService, guardService, authmw)

	incidentRepo := incidents.NewRepository(dbpool)
	incidentService := incidents.NewService(incidentRepo, auditLogger, logger)
	incidentHandler := incidents.NewHandler(logger, incidentService, guardService, authmw)

	overviewService := overview.NewService(overview.NewRepository(dbpool))
	overviewHandler := overview.NewHandler(logger, overviewService, authmw)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger, authmw)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthHandler:        authHandler,
		GeofenceHandler:    geofenceHandler,
		ApprovalsHandler:   approvalHandler,
		GuardsHandler:      guardHandler,
		CompaniesHandler:   companyHandler,
		PropertiesHandler:  propertyHandler,
		CheckpointsHandler: checkpointHandler,
		ShiftsHandler:      shiftHandler,
		IncidentsHandler:   incidentHandler,
		OverviewHandler:    overviewHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
