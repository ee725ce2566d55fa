package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiredSessionStore is the part of a session store the sweeper needs.
type ExpiredSessionStore interface {
	DeleteExpired(ctx context.Context, reference time.Time) (int, error)
}

// SessionSweeper periodically purges expired sessions from stores that do not
// expire records on their own.
type SessionSweeper struct {
	store    ExpiredSessionStore
	logger   *zap.Logger
	cron     *cron.Cron
	interval time.Duration
	now      func() time.Time
}

func NewSessionSweeper(store ExpiredSessionStore, interval time.Duration, logger *zap.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionSweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		now:      time.Now,
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("session sweep failed", zap.Error(err))
		}
	})

	return s
}

// Start launches the cron scheduler.
func (s *SessionSweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", zap.Duration("interval", s.interval))
}

// Stop waits for a running sweep to finish or for ctx to expire.
func (s *SessionSweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("session sweeper stopped")
}

// Sweep removes every session that expired before now.
func (s *SessionSweeper) Sweep(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("expired sessions removed", zap.Int("count", removed))
	}
	return removed, nil
}
