package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const keyPrefix = "session:"

// SessionStore keeps one JSON record per session under a key that Redis
// expires at the session's own deadline, so nothing needs sweeping.
type SessionStore struct {
	client *redislib.Client
	ttl    time.Duration
	now    func() time.Time
}

var _ repository.SessionRepository = (*SessionStore)(nil)

func NewSessionStore(client *redislib.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl, now: time.Now}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save writes the session; a missing CreatedAt or ExpiresAt is filled from the store TTL.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidPayload
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		session.ExpiresAt = session.CreatedAt.Add(s.ttl)
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.SetArgs(ctx, sessionKey(session.ID), raw, redislib.SetArgs{
		ExpireAt: session.ExpiresAt,
	}).Err()
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// DeleteExpired is a no-op: keys carry their own expiry.
func (s *SessionStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func sessionKey(id string) string {
	return keyPrefix + id
}
