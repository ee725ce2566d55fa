package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired purges sessions that expired before the reference time and reports how many were removed.
	DeleteExpired(ctx context.Context, reference time.Time) (int, error)
	Ping(ctx context.Context) error
}
