// Package fetch discards responses that arrive after a newer request for
// the same view has been issued.
package fetch

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by Latest.Load when a newer load was started
// before this one finished. The result was not stored.
var ErrStale = errors.New("stale response discarded")

// Sequencer issues monotonically increasing tickets and applies updates
// only for the most recently issued one.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
}

// Next issues a new ticket. Every ticket issued earlier becomes stale.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// Apply runs fn if ticket is the latest issued and reports whether it
// ran. fn runs under the sequencer's lock, so a concurrent Next cannot
// interleave with it.
func (s *Sequencer) Apply(ticket uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.latest {
		return false
	}
	fn()
	return true
}

// Latest holds the result of the most recent load of a value.
type Latest[T any] struct {
	seq   Sequencer
	mu    sync.RWMutex
	value T
	ok    bool
}

// Load runs fn and stores its result if no newer Load began meanwhile.
// A stale result returns ErrStale; an error from fn is returned as is
// and leaves the stored value alone.
func (l *Latest[T]) Load(ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	ticket := l.seq.Next()
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	applied := l.seq.Apply(ticket, func() {
		l.mu.Lock()
		l.value, l.ok = v, true
		l.mu.Unlock()
	})
	if !applied {
		var zero T
		return zero, ErrStale
	}
	return v, nil
}

// Get returns the stored value and whether any load has completed.
func (l *Latest[T]) Get() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ok
}
