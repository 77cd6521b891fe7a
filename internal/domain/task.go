package domain

import "time"

const DefaultTaskStatus = "pending"

type Task struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// NewTask is the validated input for inserting a task.
type NewTask struct {
	Title       string
	Description *string
	Status      string
}
