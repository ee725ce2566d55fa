package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create inserts the user and fills ID and CreatedAt. A taken username yields domain.ErrDuplicateUsername.
	Create(ctx context.Context, user *domain.User) error
}
