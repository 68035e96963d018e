// Package sessions tracks live driver sessions so shutdown can warn, wait
// for, and finally cancel them.
package sessions

import (
	"context"
	"sync"
)

// Handle is what the tracker can do to one live session.
type Handle struct {
	Cancel func()
	Warn   func(code, message string) error
}

type Tracker struct {
	mu   sync.Mutex
	live map[string]*entry
	wg   sync.WaitGroup
}

type entry struct {
	handle Handle
	once   sync.Once
}

func NewTracker() *Tracker {
	return &Tracker{live: make(map[string]*entry)}
}

// Add registers a session and returns its detach function. Re-registering an
// id detaches the previous entry first.
func (t *Tracker) Add(sessionID string, h Handle) (detach func()) {
	if t == nil {
		return func() {}
	}
	e := &entry{handle: h}

	t.mu.Lock()
	old := t.live[sessionID]
	t.live[sessionID] = e
	t.wg.Add(1)
	t.mu.Unlock()

	if old != nil {
		t.detach(sessionID, old)
	}
	return func() { t.detach(sessionID, e) }
}

func (t *Tracker) detach(sessionID string, e *entry) {
	e.once.Do(func() {
		t.mu.Lock()
		if t.live[sessionID] == e {
			delete(t.live, sessionID)
		}
		t.mu.Unlock()
		t.wg.Done()
	})
}

func (t *Tracker) Len() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Broadcast sends a warning to every live session and reports how many
// received it.
func (t *Tracker) Broadcast(code, message string) (sent int) {
	if t == nil {
		return 0
	}
	var warns []func(string, string) error
	t.mu.Lock()
	for _, e := range t.live {
		if e.handle.Warn != nil {
			warns = append(warns, e.handle.Warn)
		}
	}
	t.mu.Unlock()

	for _, warn := range warns {
		_ = warn(code, message)
		sent++
	}
	return sent
}

func (t *Tracker) CancelAll() (canceled int) {
	if t == nil {
		return 0
	}
	var cancels []func()
	t.mu.Lock()
	for _, e := range t.live {
		if e.handle.Cancel != nil {
			cancels = append(cancels, e.handle.Cancel)
		}
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Drain blocks until every tracked session has detached or ctx expires;
// it reports whether the tracker fully drained.
func (t *Tracker) Drain(ctx context.Context) bool {
	if t == nil {
		return true
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
