// Package flowtest provides in-memory doubles for engine tests: a
// transactor that rolls registered fakes back on failure and an audit
// sink that keeps what it was given.
package flowtest

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
)

// Snapshotter is implemented by fakes that can restore an earlier state.
type Snapshotter interface {
	// Snapshot captures the current state and returns a func restoring it.
	Snapshot() (restore func())
}

// Tx rolls every registered fake back when fn fails, which is how a real
// multi-document transaction behaves on abort.
type Tx struct {
	mu      sync.Mutex
	parts   []Snapshotter
	Commits int
	Aborts  int
}

// NewTx returns a Tx guarding parts.
func NewTx(parts ...Snapshotter) *Tx {
	return &Tx{parts: parts}
}

func (t *Tx) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	restores := make([]func(), len(t.parts))
	for i, p := range t.parts {
		restores[i] = p.Snapshot()
	}
	if err := fn(ctx); err != nil {
		for _, r := range restores {
			r()
		}
		t.Aborts++
		return err
	}
	t.Commits++
	return nil
}

// Sink records audit entries in memory.
type Sink struct {
	mu      sync.Mutex
	Entries []audit.Entry
}

func (s *Sink) Record(_ context.Context, e audit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries = append(s.Entries, e)
}

// Actions returns the recorded action names in order.
func (s *Sink) Actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Action
	}
	return out
}

// Last returns the most recent entry, or the zero Entry.
func (s *Sink) Last() audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Entries) == 0 {
		return audit.Entry{}
	}
	return s.Entries[len(s.Entries)-1]
}

// FixedClock returns a Now func that advances by step on every call.
func FixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := cur
		cur = cur.Add(step)
		return t
	}
}
