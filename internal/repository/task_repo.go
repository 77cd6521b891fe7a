package repository

import (
	"context"

	"task_tracker/internal/domain"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type TaskRepository struct {
	db Querier
}

func NewTaskRepository(db Querier) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns every task, newest first.
func (r *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, status, created_at, updated_at
		 FROM tasks
		 ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Task])
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create inserts t and returns the stored row with its generated fields.
func (r *TaskRepository) Create(ctx context.Context, t domain.NewTask) (*domain.Task, error) {
	var status *string
	if t.Status != "" {
		status = &t.Status
	}

	var out domain.Task
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, description, status)
		 VALUES ($1, $2, COALESCE($3, 'pending'))
		 RETURNING id, title, description, status, created_at, updated_at`,
		t.Title, t.Description, status,
	).Scan(&out.ID, &out.Title, &out.Description, &out.Status, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
