package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository instantiates a SQLite-backed user repository.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (username, password_hash, created_at)
	VALUES (?, ?, ?)
	RETURNING id, created_at
	`

	var created timestamp
	if err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash, now()).Scan(&user.ID, &created); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUsername
		}
		return err
	}
	user.CreatedAt = created.Time
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user    domain.User
		created timestamp
	)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	user.CreatedAt = created.Time
	return &user, nil
}
