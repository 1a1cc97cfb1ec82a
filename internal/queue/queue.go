// Package queue owns the in-process table of active queues. Queues exist
// only while the process runs; ending a queue removes it from the table
// and a restart loses every entry.
package queue

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/OpenQueue/API/internal/domain/types"
)

var (
	// ErrQueueFull is returned by Join once capacity is reached.
	ErrQueueFull = errors.New("queue: full")

	// ErrNotQueued is returned by Leave for a user that is not in the queue.
	ErrNotQueued = errors.New("queue: user not queued")
)

// Queue is one live queue. All methods are safe for concurrent use.
type Queue struct {
	id       string
	leagueID string
	capacity int

	mu      sync.Mutex
	players []string
}

// ID returns the queue id.
func (q *Queue) ID() string { return q.id }

// Join adds userID unless the queue is full. Joining twice is a no-op.
func (q *Queue) Join(userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range q.players {
		if p == userID {
			return nil
		}
	}
	if q.capacity > 0 && len(q.players) >= q.capacity {
		return ErrQueueFull
	}
	q.players = append(q.players, userID)
	return nil
}

// Leave removes userID from the queue.
func (q *Queue) Leave(userID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, p := range q.players {
		if p == userID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return nil
		}
	}
	return ErrNotQueued
}

// Snapshot returns the queue state at this instant.
func (q *Queue) Snapshot() types.QueueSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	players := make([]string, len(q.players))
	copy(players, q.players)
	return types.QueueSnapshot{
		QueueID:  q.id,
		LeagueID: q.leagueID,
		Capacity: q.capacity,
		Players:  players,
	}
}

// Registry is the process-wide table of active queues. Instantiate one per
// service (or per test); it is not a package-level global so tests stay
// isolated.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*Queue
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*Queue)}
}

// Create makes a queue, registers it and returns it.
func (r *Registry) Create(leagueID string, capacity int) *Queue {
	q := &Queue{
		id:       uuid.NewString(),
		leagueID: leagueID,
		capacity: capacity,
	}
	r.mu.Lock()
	r.active[q.id] = q
	r.mu.Unlock()
	return q
}

// Get returns the queue for id, or nil if it is not active.
func (r *Registry) Get(id string) *Queue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[id]
}

// End removes the queue from the table. Ending an unknown id is a no-op;
// the queue may already have ended concurrently.
func (r *Registry) End(id string) {
	r.mu.Lock()
	delete(r.active, id)
	r.mu.Unlock()
}

// Len returns the number of active queues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
