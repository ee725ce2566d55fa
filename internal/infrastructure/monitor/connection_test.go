package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefreshRecordsEveryDependency(t *testing.T) {
	m := New(map[string]Pinger{
		"database": PingFunc(func(context.Context) error { return nil }),
		"sessions": PingFunc(func(context.Context) error { return errors.New("down") }),
	}, time.Minute, nil)

	if m.GetStatus().Healthy() {
		t.Fatalf("status must not be healthy before the first check")
	}

	m.Refresh()
	status := m.GetStatus()
	if !status.Services["database"] {
		t.Fatalf("database should be up")
	}
	if status.Services["sessions"] {
		t.Fatalf("sessions should be down")
	}
	if status.Healthy() {
		t.Fatalf("one failing dependency makes the status unhealthy")
	}
	if status.LastCheck.IsZero() {
		t.Fatalf("expected last check timestamp")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, time.Millisecond, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
