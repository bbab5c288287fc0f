// Package relay fans chat messages out to project rooms and drives the
// asynchronous AI-response branch.
package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/metrics"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

// Conn is a broadcast target registered in a room. Implementations must be
// safe for concurrent Send calls.
type Conn interface {
	Send(env models.MessageEnvelope) error
}

// Registry tracks which connections belong to which room. Membership sets
// are the only mutable shared state in the relay core and are guarded by
// the registry mutex.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]map[Conn]struct{}
	logger zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]map[Conn]struct{}),
		logger: logger.With().Str("component", "registry").Logger(),
	}
}

// Join adds the connection to the room, creating the room on first join.
// Joining twice is a no-op: a connection is never a double broadcast target.
func (r *Registry) Join(roomID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[Conn]struct{})
		r.rooms[roomID] = members
	}
	members[c] = struct{}{}
}

// Leave removes the connection from the room. The room entry is evicted
// when its last member leaves; nothing beyond the member set lives in an
// entry, so recreation on rejoin is free.
func (r *Registry) Leave(roomID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

// Broadcast delivers the envelope to every member of the room at the
// moment of the call. Delivery is independent per member: a dead transport
// is logged and counted, never returned to the caller or allowed to block
// the remaining members.
func (r *Registry) Broadcast(roomID string, env models.MessageEnvelope) {
	r.mu.RLock()
	targets := make([]Conn, 0, len(r.rooms[roomID]))
	for c := range r.rooms[roomID] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	for _, c := range targets {
		if err := c.Send(env); err != nil {
			metrics.BroadcastFailures.Inc()
			r.logger.Debug().
				Err(err).
				Str("room", roomID).
				Str("message_id", env.ID).
				Msg("dropped delivery to dead connection")
		}
	}
}

// Members returns the current size of a room.
func (r *Registry) Members(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
