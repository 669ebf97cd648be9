package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/veritract/veritract/internal/app"
	"github.com/veritract/veritract/internal/audit"
	"github.com/veritract/veritract/internal/contracts"
	"github.com/veritract/veritract/internal/delegation"
	"github.com/veritract/veritract/internal/kb"
	"github.com/veritract/veritract/internal/org"
	"github.com/veritract/veritract/internal/platform/cache"
	"github.com/veritract/veritract/internal/platform/db"
	"github.com/veritract/veritract/internal/policy"
	"github.com/veritract/veritract/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
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

	versions := policy.NewVersions(pool, redisClient)
	orgRepo := org.NewRepository(pool)
	delegationRepo := delegation.NewRepository(pool)
	policyRepo := policy.NewRepository(pool)
	kbRepo := kb.NewRepository(pool)
	contractsRepo := contracts.NewRepository(pool)
	loader := policy.NewSnapshotLoader(versions, orgRepo, delegationRepo, policyRepo, kbRepo, contractsRepo)
	snapshots := policy.NewStore(loader, versions, logger)

	auditService := audit.NewService(pool)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditRetentionSweep, Handler: jobs.NewAuditRetentionHandler(auditService, cfg.AuditRetention, logger)},
			{Type: jobs.TaskDelegationExpiryReport, Handler: jobs.NewDelegationExpiryHandler(delegationRepo, logger)},
			{Type: jobs.TaskSnapshotWarmup, Handler: jobs.NewSnapshotWarmupHandler(snapshots, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewAuditRetentionSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 6 * * *", Task: jobs.NewDelegationExpiryReportTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "*/15 * * * *", Task: jobs.NewSnapshotWarmupTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
