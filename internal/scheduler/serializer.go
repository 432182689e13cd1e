// Package scheduler serializes work per key. Occurrence production for one
// schedule must never interleave with another production for the same
// schedule; different schedules proceed in parallel.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrEmptyKey = errors.New("scheduler: empty key")
	ErrStopped  = errors.New("scheduler: serializer stopped")
)

type slot struct {
	// lock is a one-token semaphore so waiters can also watch ctx.
	lock chan struct{}
	refs int
}

type Serializer struct {
	mu        sync.Mutex
	slots     map[string]*slot
	stopped   bool
	contended uint64
}

func NewSerializer() *Serializer {
	return &Serializer{slots: make(map[string]*slot)}
}

// Do runs fn while holding the lock for key. It returns ctx.Err() if the
// context ends before the lock is acquired.
func (s *Serializer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if key == "" {
		return ErrEmptyKey
	}
	sl, err := s.acquire(key)
	if err != nil {
		return err
	}
	defer s.release(key, sl)

	select {
	case sl.lock <- struct{}{}:
	default:
		atomic.AddUint64(&s.contended, 1)
		select {
		case sl.lock <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer func() { <-sl.lock }()
	return fn(ctx)
}

// Contended reports how many calls had to wait for another holder.
func (s *Serializer) Contended() uint64 {
	return atomic.LoadUint64(&s.contended)
}

// Active reports how many keys currently have a holder or waiter.
func (s *Serializer) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Stop rejects new calls. Calls already holding or waiting on a key finish.
func (s *Serializer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *Serializer) acquire(key string) (*slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}
	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{lock: make(chan struct{}, 1)}
		s.slots[key] = sl
	}
	sl.refs++
	return sl, nil
}

func (s *Serializer) release(key string, sl *slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl.refs--
	if sl.refs == 0 {
		delete(s.slots, key)
	}
}
