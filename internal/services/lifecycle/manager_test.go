package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(context.Background(), time.Second, nil)

	var order []string
	for _, name := range []string{"database", "sessions", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	want := []string{"http", "sessions", "database"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	if m.Context().Err() == nil {
		t.Fatal("expected context to be cancelled after shutdown")
	}
}

func TestShutdownJoinsErrorsAndKeepsGoing(t *testing.T) {
	m := New(context.Background(), time.Second, nil)
	first := errors.New("first")
	second := errors.New("second")

	ran := 0
	m.Register("a", func(context.Context) error { ran++; return first })
	m.Register("b", func(context.Context) error { ran++; return second })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if ran != 2 {
		t.Fatalf("expected both hooks to run, ran %d", ran)
	}
}

func TestFailedTaskTriggersShutdown(t *testing.T) {
	m := New(context.Background(), time.Second, nil)
	boom := errors.New("listen failed")

	stopped := make(chan struct{})
	m.Register("probe", func(context.Context) error {
		close(stopped)
		return nil
	})
	m.Go("http", func() error { return boom })

	done := make(chan error, 1)
	go func() { done <- m.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("manager did not shut down after task failure")
	}
	<-stopped

	if !errors.Is(m.Err(), boom) {
		t.Fatalf("expected task error, got %v", m.Err())
	}
}
