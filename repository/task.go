package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository operations are always scoped to an owner; a task owned by
// someone else is reported as domain.ErrTaskNotFound.
type TaskRepository interface {
	ListByOwner(ctx context.Context, userID int64) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	ToggleDone(ctx context.Context, userID, id int64) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}
