package sessions

import (
	"context"
	"testing"
	"time"
)

func TestTracker_AddAndDetach(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	detach := tr.Add("s1", Handle{})
	if got := tr.Len(); got != 1 {
		t.Fatalf("Len=%d, want 1", got)
	}
	detach()
	detach() // second detach is a no-op
	if got := tr.Len(); got != 0 {
		t.Fatalf("Len=%d, want 0", got)
	}
}

func TestTracker_ReplacingIDDetachesOldEntry(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	oldCanceled := false
	tr.Add("s1", Handle{Cancel: func() { oldCanceled = true }})
	detach := tr.Add("s1", Handle{})
	if got := tr.Len(); got != 1 {
		t.Fatalf("Len=%d, want 1 after re-register", got)
	}
	if oldCanceled {
		t.Fatal("re-register must not cancel the old session, only detach it")
	}
	detach()
	if got := tr.Len(); got != 0 {
		t.Fatalf("Len=%d, want 0", got)
	}
}

func TestTracker_BroadcastAndCancelAll(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var warned, canceled int
	for _, id := range []string{"s1", "s2"} {
		tr.Add(id, Handle{
			Warn:   func(code, message string) error { warned++; return nil },
			Cancel: func() { canceled++ },
		})
	}
	if got := tr.Broadcast("server_draining", "bye"); got != 2 {
		t.Fatalf("Broadcast=%d, want 2", got)
	}
	if warned != 2 {
		t.Fatalf("warned=%d, want 2", warned)
	}
	if got := tr.CancelAll(); got != 2 {
		t.Fatalf("CancelAll=%d, want 2", got)
	}
	if canceled != 2 {
		t.Fatalf("canceled=%d, want 2", canceled)
	}
}

func TestTracker_Drain(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	detach := tr.Add("s1", Handle{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if tr.Drain(ctx) {
		t.Fatal("Drain must report false while a session is live")
	}

	detach()
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	if !tr.Drain(ctx2) {
		t.Fatal("Drain must report true once all sessions detach")
	}
}

func TestTracker_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var tr *Tracker
	detach := tr.Add("s1", Handle{})
	detach()
	if tr.Len() != 0 || tr.Broadcast("c", "m") != 0 || tr.CancelAll() != 0 {
		t.Fatal("nil tracker operations must be no-ops")
	}
	if !tr.Drain(context.Background()) {
		t.Fatal("nil tracker drains immediately")
	}
}
