package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoRunsFunction(t *testing.T) {
	s := NewSerializer()
	called := false
	if err := s.Do(t.Context(), "sched-1", func(context.Context) error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to run")
	}
	if s.Active() != 0 {
		t.Fatalf("expected slot released, active=%d", s.Active())
	}
}

func TestDoReturnsFunctionError(t *testing.T) {
	s := NewSerializer()
	want := errors.New("boom")
	err := s.Do(t.Context(), "sched-1", func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected fn error, got %v", err)
	}
}

func TestDoRejectsEmptyKey(t *testing.T) {
	s := NewSerializer()
	err := s.Do(t.Context(), "", func(context.Context) error { return nil })
	if !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
}

func TestDoAfterStop(t *testing.T) {
	s := NewSerializer()
	s.Stop()
	err := s.Do(t.Context(), "sched-1", func(context.Context) error { return nil })
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestDoHonorsContextWhileWaiting(t *testing.T) {
	s := NewSerializer()
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), "sched-1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, "sched-1", func(context.Context) error {
		t.Errorf("fn must not run while key is held")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if s.Contended() == 0 {
		t.Fatalf("expected contention to be recorded")
	}
}

func TestDistinctKeysDoNotBlock(t *testing.T) {
	s := NewSerializer()
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = s.Do(context.Background(), "sched-1", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(t.Context(), time.Second)
	defer cancel()
	if err := s.Do(ctx, "sched-2", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("other key should not wait: %v", err)
	}
}
