package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository/bolt"
)

func TestSessionSweeperRemovesOnlyExpired(t *testing.T) {
	store, err := bolt.Open(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	sessions := []*domain.Session{
		{ID: "stale", UserID: 1, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)},
		{ID: "live", UserID: 2, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	}
	for _, s := range sessions {
		if err := store.Save(ctx, s); err != nil {
			t.Fatalf("save %s: %v", s.ID, err)
		}
	}

	sweeper := NewSessionSweeper(store, time.Minute, nil)
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed session, got %d", removed)
	}

	if _, err := store.Get(ctx, "stale"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected stale session to be gone, got %v", err)
	}
	if _, err := store.Get(ctx, "live"); err != nil {
		t.Fatalf("expected live session to remain, got %v", err)
	}
}

type failingStore struct{ err error }

func (f failingStore) DeleteExpired(context.Context, time.Time) (int, error) { return 0, f.err }

func TestSessionSweeperPropagatesStoreError(t *testing.T) {
	boom := errors.New("disk gone")
	sweeper := NewSessionSweeper(failingStore{err: boom}, time.Minute, nil)

	if _, err := sweeper.Sweep(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSessionSweeperStartStop(t *testing.T) {
	sweeper := NewSessionSweeper(failingStore{}, time.Second, nil)
	sweeper.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sweeper.Stop(ctx)
}
