package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_tracker/internal/config"
	"task_tracker/internal/db"
	httpServer "task_tracker/internal/http"
	"task_tracker/internal/http/middleware"
	"task_tracker/internal/logger"
	"task_tracker/internal/repository"
	"task_tracker/internal/schema"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to start application", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	s, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		fatal(err)
	}

	dbPool, err := db.Connect(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer dbPool.Close()

	if _, err := db.RunSchemaSetup(ctx, db.PoolAcquirer{Pool: dbPool}, s); err != nil {
		dbPool.Close()
		fatal(err)
	}

	deps := httpServer.Deps{
		Tasks:  repository.NewTaskRepository(dbPool),
		DB:     dbPool,
		Config: cfg,
	}
	if cfg.RedisAddr != "" {
		rl, err := middleware.NewRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory rate limiter", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rl.Close()
			deps.Limiter = rl
		}
	}
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewMemoryRateLimiter()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: httpServer.NewRouter(deps),
	}

	go func() {
		logger.Info("task tracker listening", "url", "http://localhost:"+cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// fatal logs a startup failure, including the SQLSTATE when postgres sent one, and exits.
func fatal(err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		logger.Fatal("failed to start application", "error", err, "code", pgErr.Code)
	}
	logger.Fatal("failed to start application", "error", err)
}
