package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session is a single checked-out connection. Release must be called exactly once.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

type Acquirer interface {
	AcquireSession(ctx context.Context) (Session, error)
}

// PoolAcquirer hands out pooled connections as sessions.
type PoolAcquirer struct {
	Pool *pgxpool.Pool
}

func (a PoolAcquirer) AcquireSession(ctx context.Context) (Session, error) {
	conn, err := a.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
