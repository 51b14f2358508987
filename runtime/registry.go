package runtime

import (
	"sync"

	"arena-ledger/contract"
	"arena-ledger/domain"
)

// Registry is the directory of live subscriber connections. There is one
// sink per participant at most; subscribing again replaces the previous
// connection, which covers the reconnect-with-a-stale-stream case.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ParticipantID]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ParticipantID]contract.EventSink),
	}
}

// SinkFor resolves the active connection of a participant, if any.
// Participants tracked by the ledger but not currently streaming simply
// have no sink; the fanout skips them.
func (r *Registry) SinkFor(id domain.ParticipantID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sink, ok := r.sessions[id]
	return sink, ok
}

// Subscribe registers a participant's active connection.
func (r *Registry) Subscribe(id domain.ParticipantID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = sink
}

// Unsubscribe removes a participant's connection from the directory so the
// fanout stops delivering to it. Safe to call for unknown participants.
func (r *Registry) Unsubscribe(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
}

// UnsubscribeSink removes the connection only if it is still the one
// registered for the participant. A stream tearing down after a newer
// subscription replaced it must not evict the replacement, otherwise a
// reconnecting client whose old handler returns late would stop
// receiving balance events on its live stream.
func (r *Registry) UnsubscribeSink(id domain.ParticipantID, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[id]; ok && current == sink {
		delete(r.sessions, id)
	}
}

// Sessions reports how many participants are currently streaming.
func (r *Registry) Sessions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}
