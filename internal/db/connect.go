package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/config"
	"task_tracker/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDatabaseUnavailable = errors.New("database unavailable")

const (
	ConnectAttempts = 30
	ConnectDelay    = time.Second
)

// NewPool builds the shared pool without connecting; use WaitForDatabase to
// confirm the server is reachable.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pcfg.MaxConns = cfg.DBMaxConns
	pcfg.MaxConnIdleTime = cfg.DBMaxIdleTime
	pcfg.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}
	return pool, nil
}

// Connect creates the pool and blocks until the database answers a liveness
// query or the attempt budget is spent.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := WaitForDatabase(ctx, PoolAcquirer{Pool: pool}, ConnectAttempts, ConnectDelay); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected", "host", cfg.DBHost, "database", cfg.DBName)
	return pool, nil
}

// WaitForDatabase acquires a session and runs SELECT 1, retrying with a fixed
// delay between attempts. The last error is wrapped in ErrDatabaseUnavailable.
func WaitForDatabase(ctx context.Context, acq Acquirer, attempts int, delay time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}
	attempt := 0
	ping := func() error {
		attempt++
		sess, err := acq.AcquireSession(ctx)
		if err != nil {
			return err
		}
		defer sess.Release()
		_, err = sess.Exec(ctx, "SELECT 1")
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)),
		ctx,
	)
	notify := func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying",
			"attempt", fmt.Sprintf("%d/%d", attempt, attempts),
			"retry_in", next,
			"error", err)
	}

	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		return fmt.Errorf("%w after %d attempts: %w", ErrDatabaseUnavailable, attempt, err)
	}
	return nil
}
