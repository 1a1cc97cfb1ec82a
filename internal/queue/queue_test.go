package queue

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestJoinAndLeave(t *testing.T) {
	r := NewRegistry()
	q := r.Create("L1", 2)

	if err := q.Join("U1"); err != nil {
		t.Fatal(err)
	}
	// joining twice is a no-op
	if err := q.Join("U1"); err != nil {
		t.Fatal(err)
	}
	if err := q.Join("U2"); err != nil {
		t.Fatal(err)
	}
	if err := q.Join("U3"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	if err := q.Leave("U1"); err != nil {
		t.Fatal(err)
	}
	if err := q.Leave("U1"); !errors.Is(err, ErrNotQueued) {
		t.Fatalf("expected ErrNotQueued, got %v", err)
	}

	// capacity freed up
	if err := q.Join("U3"); err != nil {
		t.Fatal(err)
	}
}

func TestUnlimitedCapacity(t *testing.T) {
	r := NewRegistry()
	q := r.Create("L1", 0)

	for i := 0; i < 100; i++ {
		if err := q.Join(fmt.Sprintf("U%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(q.Snapshot().Players); got != 100 {
		t.Fatalf("players = %d, want 100", got)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	r := NewRegistry()
	q := r.Create("L1", 5)
	q.Join("U1")

	snap := q.Snapshot()
	if snap.LeagueID != "L1" || snap.Capacity != 5 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Players) != 1 || snap.Players[0] != "U1" {
		t.Fatalf("players = %v", snap.Players)
	}

	// mutating the snapshot must not touch the queue
	snap.Players[0] = "tampered"
	if got := q.Snapshot().Players[0]; got != "U1" {
		t.Fatalf("queue state leaked: %q", got)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	q := r.Create("L1", 10)

	if got := r.Get(q.ID()); got != q {
		t.Fatal("registry should return the created queue")
	}
	if r.Len() != 1 {
		t.Fatalf("len = %d, want 1", r.Len())
	}

	r.End(q.ID())
	if r.Get(q.ID()) != nil {
		t.Fatal("ended queue should be gone")
	}
	// ending twice is a no-op
	r.End(q.ID())
	if r.Len() != 0 {
		t.Fatalf("len = %d, want 0", r.Len())
	}
}

func TestConcurrentJoinRespectsCapacity(t *testing.T) {
	r := NewRegistry()
	q := r.Create("L1", 10)

	const players = 50
	var wg sync.WaitGroup
	wg.Add(players)
	for i := 0; i < players; i++ {
		id := i
		go func() {
			defer wg.Done()
			q.Join(fmt.Sprintf("U%d", id))
		}()
	}
	wg.Wait()

	if got := len(q.Snapshot().Players); got != 10 {
		t.Fatalf("players = %d, want 10", got)
	}
}
