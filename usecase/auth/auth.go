package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/pkg/sessiontoken"
	"github.com/fastygo/taskboard/repository"
)

// Ticket is what the transport layer hands to the browser after a successful login.
type Ticket struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   *password.Hasher
	signer   *sessiontoken.Signer
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher *password.Hasher,
	signer *sessiontoken.Signer,
	ttl time.Duration,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		signer:   signer,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account and opens a session for it.
func (uc *UseCase) Register(ctx context.Context, username, plain string) (*Ticket, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || plain == "" {
		return nil, domain.ErrMissingCredentials
	}
	if len([]rune(username)) > domain.MaxUsernameLength {
		return nil, domain.ErrUsernameTooLong
	}

	hash, err := uc.hasher.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return nil, domain.ErrPasswordTooLong
		}
		return nil, domain.WrapError(domain.ErrCodeInternal, "hash password", err)
	}

	user := &domain.User{Username: username, PasswordHash: hash}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, uc.logger).Info("user registered", zap.Int64("user_id", user.ID))
	return uc.StartSession(ctx, user)
}

// Login verifies credentials and opens a session.
func (uc *UseCase) Login(ctx context.Context, username, plain string) (*Ticket, error) {
	if domain.NormalizeUsername(username) == "" || plain == "" {
		return nil, domain.ErrMissingCredentials
	}
	user, err := uc.Verify(ctx, username, plain)
	if err != nil {
		return nil, err
	}
	return uc.StartSession(ctx, user)
}

// Verify checks a username/password pair. Unknown users and wrong passwords
// both yield domain.ErrInvalidCredentials after the same bcrypt work.
func (uc *UseCase) Verify(ctx context.Context, username, plain string) (*domain.User, error) {
	log := logger.FromContext(ctx, uc.logger)
	username = domain.NormalizeUsername(username)

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		uc.hasher.CompareDummy(plain)
		log.Warn("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.hasher.Compare(user.PasswordHash, plain); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			log.Error("stored password hash unusable", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		log.Warn("login rejected")
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// User loads an account by id.
func (uc *UseCase) User(ctx context.Context, id int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// StartSession stores a new session for user and signs a token referencing it.
func (uc *UseCase) StartSession(ctx context.Context, user *domain.User) (*Ticket, error) {
	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signer.Sign(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign session", err)
	}

	logger.FromContext(ctx, uc.logger).Info("session started", zap.Int64("user_id", user.ID))
	return &Ticket{Token: token, ExpiresAt: session.ExpiresAt, User: user}, nil
}

// Resolve maps a browser token to its live session. Every failure short of a
// store outage is reported as domain.ErrUnauthenticated.
func (uc *UseCase) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.signer.Parse(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	session, err := uc.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	userID, _ := claims.UserID()
	if session.UserID != userID {
		logger.FromContext(ctx, uc.logger).Warn("session user mismatch", zap.String("session_id", session.ID))
		return nil, domain.ErrUnauthenticated
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

// Logout revokes the session behind token. Unknown or invalid tokens are ignored.
func (uc *UseCase) Logout(ctx context.Context, token string) error {
	claims, err := uc.signer.Parse(token)
	if err != nil {
		return nil
	}
	if err := uc.sessions.Delete(ctx, claims.SessionID); err != nil {
		return err
	}
	logger.FromContext(ctx, uc.logger).Info("session revoked")
	return nil
}
