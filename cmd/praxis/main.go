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

	"github.com/praxis-crm/praxis/internal/app"
	"github.com/praxis-crm/praxis/internal/auth"
	"github.com/praxis-crm/praxis/internal/authz"
	"github.com/praxis-crm/praxis/internal/dispatch"
	"github.com/praxis-crm/praxis/internal/finance"
	"github.com/praxis-crm/praxis/internal/observability"
	"github.com/praxis-crm/praxis/internal/platform/cache"
	"github.com/praxis-crm/praxis/internal/platform/db"
	"github.com/praxis-crm/praxis/internal/rbac"
	"github.com/praxis-crm/praxis/internal/roles"
	"github.com/praxis-crm/praxis/internal/routing"
	"github.com/praxis-crm/praxis/internal/students"
	"github.com/praxis-crm/praxis/internal/token"
	"github.com/praxis-crm/praxis/internal/users"
	"github.com/praxis-crm/praxis/jobs"
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

	// Redis is load-bearing here: token revocation fails closed without it.
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

	metrics := observability.NewMetrics()

	pools := dispatch.NewPools(dispatch.PoolsConfig{
		DBSize:      cfg.PoolDBSize,
		IOSize:      cfg.PoolIOSize,
		CPUSize:     cfg.PoolCPUSize,
		MaxExecTime: cfg.PoolMaxExecTime,
	}, metrics)
	dispatcher := dispatch.NewDispatcher(pools, logger)

	rbacRepo := rbac.NewRepository(dbpool)
	matrixCache := authz.NewMatrixCache(redisClient, rbac.NewMatrixSource(rbacRepo), cfg.MatrixCacheTTL, logger)
	rbacService := rbac.NewService(rbacRepo, matrixCache, logger)
	evaluator := authz.NewEvaluator(logger)

	blacklist := token.NewRedisBlacklist(redisClient)
	tokens := token.NewService(token.Config{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	}, blacklist, rbacService)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo, rbacService)
	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, rbacService)
	authService := auth.NewService(usersService, usersService, rbacRepo, tokens, logger)
	studentsService := students.NewService(students.NewRepository(dbpool))
	financeService := finance.NewService(finance.NewRepository(dbpool))

	var declarations []routing.Declaration
	declarations = append(declarations, authService.Routes()...)
	declarations = append(declarations, usersService.Routes()...)
	declarations = append(declarations, rolesService.Routes()...)
	declarations = append(declarations, rbacService.Routes()...)
	declarations = append(declarations, studentsService.Routes()...)
	declarations = append(declarations, financeService.Routes()...)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router, _, err := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Metrics:      metrics,
		Tokens:       tokens,
		Authorizer:   evaluator,
		Invoker:      dispatcher,
		Declarations: declarations,
		JobsHandler:  jobHandler,
	})
	if err != nil {
		logger.Error("build router", slog.Any("error", err))
		os.Exit(1)
	}

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
