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

	"github.com/veritract/veritract/internal/access"
	"github.com/veritract/veritract/internal/admin"
	"github.com/veritract/veritract/internal/app"
	"github.com/veritract/veritract/internal/audit"
	audithttp "github.com/veritract/veritract/internal/audit/http"
	"github.com/veritract/veritract/internal/auth"
	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/observability"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/platform/cache"
	"github.com/veritract/veritract/internal/platform/db"
	"github.com/veritract/veritract/internal/policy"
	"github.com/veritract/veritract/internal/seclevel"
	"github.com/veritract/veritract/jobs"
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

	levels, err := seclevel.LoadFile(cfg.SecurityLevelsFile)
	if err != nil {
		logger.Error("load security levels", slog.Any("error", err))
		os.Exit(1)
	}

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

	versions := policy.NewVersions(dbpool, redisClient)
	orgRepo := org.NewRepository(dbpool)
	delegationRepo := delegation.NewRepository(dbpool)
	policyRepo := policy.NewRepository(dbpool)
	kbRepo := kb.NewRepository(dbpool)
	contractsRepo := contracts.NewRepository(dbpool)

	loader := policy.NewSnapshotLoader(versions, orgRepo, delegationRepo, policyRepo, kbRepo, contractsRepo)
	snapshots := policy.NewStore(loader, versions, logger)
	if err := snapshots.Warm(ctx); err != nil {
		logger.Warn("snapshot warmup", slog.Any("error", err))
	}

	metrics := observability.NewMetrics()
	auditLogger := audit.NewLogger(dbpool)
	resolver := access.NewResolver(snapshots, levels, auditLogger, metrics, logger)
	accessHandler := access.NewHandler(resolver, logger)

	auditService := audit.NewService(dbpool)
	auditHandler := audithttp.NewHandler(logger, auditService)

	authService := auth.NewService(auth.NewRepository(dbpool))

	policyService := policy.NewService(policyRepo, versions)
	delegationService := delegation.NewService(delegationRepo, versions)
	kbService := kb.NewService(kbRepo, versions)
	visibilityService := contracts.NewService(contractsRepo, levels, versions)
	adminHandler := admin.NewHandler(policyService, delegationService, kbService, visibilityService, authService, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("init job client", slog.Any("error", err))
	} else {
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		if _, err := jobClient.EnqueueSnapshotWarmup(ctx); err != nil {
			logger.Warn("enqueue snapshot warmup", slog.Any("error", err))
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		AuthService:   authService,
		AccessHandler: accessHandler,
		AuditHandler:  auditHandler,
		AdminHandler:  adminHandler,
		JobHandler:    jobHandler,
		Pool:          dbpool,
		Redis:         redisClient,
		Metrics:       metrics,
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
