package state

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryGetOrCreateIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	const workers = 16

	sessions := make([]*Session, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			sessions[i] = reg.GetOrCreate("conv-1", "user-1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("worker %d observed a different session", i)
		}
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
}

func TestSessionBeginRejectsConcurrentTurn(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	sess := reg.GetOrCreate("conv-1", "user-1")

	if err := sess.Begin(); err != nil {
		t.Fatalf("first Begin() error = %v", err)
	}
	if err := sess.Begin(); !errors.Is(err, ErrConversationBusy) {
		t.Fatalf("second Begin() error = %v, want ErrConversationBusy", err)
	}
	sess.End()
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin() after End() error = %v", err)
	}
	sess.End()
}

func TestSessionBeginAfterDelete(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	sess := reg.GetOrCreate("conv-1", "user-1")
	reg.Delete("conv-1")

	if err := sess.Begin(); !errors.Is(err, ErrConversationGone) {
		t.Fatalf("Begin() after Delete error = %v, want ErrConversationGone", err)
	}
}

func TestDeleteDoesNotCancelInFlightTurn(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	sess := reg.GetOrCreate("conv-1", "user-1")
	if err := sess.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	reg.Delete("conv-1")

	// The in-flight turn keeps its context and finishes normally.
	if sess.Context() == nil {
		t.Fatal("context dropped while turn in flight")
	}
	sess.End()

	// A fresh request for the same id gets a new session.
	fresh := reg.GetOrCreate("conv-1", "user-1")
	if fresh == sess {
		t.Fatal("deleted session resurrected by GetOrCreate")
	}
	if err := fresh.Begin(); err != nil {
		t.Fatalf("Begin() on fresh session error = %v", err)
	}
	fresh.End()
}

func TestDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.GetOrCreate("conv-1", "user-1")

	reg.Delete("conv-1")
	reg.Delete("conv-1")
	reg.Delete("never-existed")
	reg.Delete("   ")

	if reg.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", reg.Len())
	}
}
