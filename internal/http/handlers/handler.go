package handlers

import (
	"context"

	"task_tracker/internal/domain"
)

// TaskStore is the persistence the task routes depend on.
type TaskStore interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, t domain.NewTask) (*domain.Task, error)
}

// Handler carries the dependencies shared by the task routes.
type Handler struct {
	Tasks TaskStore
	// Verbose exposes underlying error text in 500 responses.
	Verbose bool
}

func NewHandler(tasks TaskStore, verbose bool) *Handler {
	return &Handler{Tasks: tasks, Verbose: verbose}
}
