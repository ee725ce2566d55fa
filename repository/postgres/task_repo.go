package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Task, error) {
	const query = `
	SELECT id, user_id, title, due_date, note, done, created_at
	FROM tasks
	WHERE user_id = $1
	ORDER BY id DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (user_id, title, due_date, note)
	VALUES ($1, $2, $3, $4)
	RETURNING id, done, created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		nullDate(task.DueDate),
		nullString(task.Note),
	).Scan(&task.ID, &task.Done, &task.CreatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) ToggleDone(ctx context.Context, userID, id int64) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET done = NOT done
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, title, due_date, note, done, created_at
	`
	return scanTask(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var due *time.Time

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&due,
		&task.Note,
		&task.Done,
		&task.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if due != nil {
		d := due.UTC()
		task.DueDate = &d
	}
	return &task, nil
}
