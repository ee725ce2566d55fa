package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository"
)

// AddInput carries the raw fields of a new task; empty optional fields mean "no value".
type AddInput struct {
	Title   string
	DueDate string
	Note    string
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context, userID int64) ([]domain.Task, error) {
	return uc.tasks.ListByOwner(ctx, userID)
}

func (uc *UseCase) Add(ctx context.Context, userID int64, input AddInput) (*domain.Task, error) {
	task, err := domain.NewTask(userID, input.Title, input.DueDate, input.Note)
	if err != nil {
		return nil, err
	}
	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, uc.logger).Debug("task created", zap.Int64("task_id", created.ID))
	return created, nil
}

// Toggle flips the done flag. Concurrent toggles of one task are last-write-wins.
func (uc *UseCase) Toggle(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return uc.tasks.ToggleDone(ctx, userID, id)
}

func (uc *UseCase) Delete(ctx context.Context, userID, id int64) error {
	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		return err
	}
	logger.FromContext(ctx, uc.logger).Debug("task deleted", zap.Int64("task_id", id))
	return nil
}
