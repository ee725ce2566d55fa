package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, user_id, title, due_date, note, done, created_at`

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository returns a SQLite-backed implementation of TaskRepository.
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Task, error) {
	const query = `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE user_id = ?
	ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
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
	INSERT INTO tasks (user_id, title, due_date, note, created_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id, done, created_at
	`

	var created timestamp
	if err := r.db.QueryRowContext(ctx, query,
		task.UserID,
		task.Title,
		nullDate(task.DueDate),
		nullString(task.Note),
		now(),
	).Scan(&task.ID, &task.Done, &created); err != nil {
		return nil, err
	}
	task.CreatedAt = created.Time
	return task, nil
}

func (r *taskRepository) ToggleDone(ctx context.Context, userID, id int64) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET done = NOT done
	WHERE id = ? AND user_id = ?
	RETURNING ` + taskColumns
	return scanTask(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *taskRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var (
		task    domain.Task
		due     sql.NullString
		note    sql.NullString
		created timestamp
	)

	if err := row.Scan(&task.ID, &task.UserID, &task.Title, &due, &note, &task.Done, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if due.Valid {
		parsed, err := domain.ParseDate(due.String)
		if err != nil {
			return nil, err
		}
		task.DueDate = &parsed
	}
	if note.Valid {
		task.Note = &note.String
	}
	task.CreatedAt = created.Time
	return &task, nil
}
