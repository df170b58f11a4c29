// Package registry tracks the game clients currently registered with the
// daemon. It is a thread-safe in-memory store keyed by pid; the whitelist
// and blacklist gate entry into it and the reaper prunes it.
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// Client is one registered game client.
type Client struct {
	ID           string    // Unique session identifier
	PID          int       // Process ID of the game
	Path         string    // Executable path the filter lists matched against
	RegisteredAt time.Time // When the client registered
}

// Registry is a thread-safe store of registered clients.
type Registry struct {
	mu    sync.RWMutex
	byPID map[int]*Client
	count atomic.Int64
}

// New returns an empty Registry ready to use.
func New() *Registry {
	return &Registry{byPID: make(map[int]*Client)}
}

// Register records a client for pid and returns it. If the pid is already
// registered the existing client is returned with ok=false and nothing
// changes.
func (r *Registry) Register(pid int, path string) (Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, exists := r.byPID[pid]; exists {
		return *cur, false
	}

	c := &Client{
		ID:           uuid.NewString(),
		PID:          pid,
		Path:         path,
		RegisteredAt: time.Now(),
	}
	r.byPID[pid] = c
	r.count.Inc()
	return *c, true
}

// Remove deletes the client for pid; returns the removed client for logging.
func (r *Registry) Remove(pid int) (Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byPID[pid]
	if !ok {
		return Client{}, false
	}
	delete(r.byPID, pid)
	r.count.Dec()
	return *cur, true
}

// Snapshot returns a copy of the current clients.
func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.byPID))
	for _, c := range r.byPID {
		clients = append(clients, *c) // value copy
	}
	return clients
}

// Count returns the number of registered clients.
func (r *Registry) Count() int64 {
	return r.count.Load()
}
