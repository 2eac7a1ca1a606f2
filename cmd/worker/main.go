package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/praxis-crm/praxis/internal/app"
	"github.com/praxis-crm/praxis/internal/authz"
	jobmetrics "github.com/praxis-crm/praxis/internal/jobs"
	"github.com/praxis-crm/praxis/internal/platform/cache"
	"github.com/praxis-crm/praxis/internal/platform/db"
	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/jobs"
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

	rbacRepo := rbac.NewRepository(pool)
	matrixCache := authz.NewMatrixCache(redisClient, rbac.NewMatrixSource(rbacRepo), cfg.MatrixCacheTTL, logger)
	rbacService := rbac.NewService(rbacRepo, matrixCache, logger)

	tasks := jobs.NewTasks(rbacService, redisClient, jobmetrics.NewMetrics(nil), logger, cfg.JWTRefreshTTL)

	warmTask, err := jobs.NewMatrixWarmTask(jobs.MatrixWarmPayload{Limit: 200})
	if err != nil {
		logger.Error("build warm task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Tasks:     tasks,
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: jobs.NewBlacklistSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
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
