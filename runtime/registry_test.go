package runtime

import (
	"context"
	"testing"

	"arena-ledger/domain"
	"arena-ledger/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	return nil
}

func TestRegistry_Subscribe_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := domain.ParticipantID(uuid.NewString())
	sink := Sink{}

	// Given no participant is connected
	req.Zero(registry.Sessions())

	// When a participant subscribes
	registry.Subscribe(participantID, sink)

	// Then their sink is resolvable
	req.Equal(1, registry.Sessions())
	resolved, ok := registry.SinkFor(participantID)
	req.True(ok)
	req.Equal(sink, resolved)
}

func TestRegistry_Subscribe_ReplacesStaleConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := domain.ParticipantID(uuid.NewString())

	// Given a participant already streaming
	registry.Subscribe(participantID, Sink{name: "stale"})

	// When the same participant reconnects with a fresh stream
	registry.Subscribe(participantID, Sink{name: "fresh"})

	// Then only the fresh connection remains
	req.Equal(1, registry.Sessions())
	resolved, ok := registry.SinkFor(participantID)
	req.True(ok)
	req.Equal(Sink{name: "fresh"}, resolved)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID1 := domain.ParticipantID(uuid.NewString())
	participantID2 := domain.ParticipantID(uuid.NewString())

	registry.Subscribe(participantID1, Sink{name: "one"})
	registry.Subscribe(participantID2, Sink{name: "two"})

	// When a participant unsubscribes
	registry.Unsubscribe(participantID1)

	// Then only the other one is left
	req.Equal(1, registry.Sessions())
	_, ok := registry.SinkFor(participantID1)
	req.False(ok)
	resolved, ok := registry.SinkFor(participantID2)
	req.True(ok)
	req.Equal(Sink{name: "two"}, resolved)

	// And unsubscribing an unknown participant is harmless
	registry.Unsubscribe("ghost")
	req.Equal(1, registry.Sessions())
}

func TestRegistry_UnsubscribeSink_RemovesOwnConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := domain.ParticipantID(uuid.NewString())
	sink := Sink{name: "stream"}

	registry.Subscribe(participantID, sink)

	// When the stream handler tears down its own sink
	registry.UnsubscribeSink(participantID, sink)

	// Then the participant is no longer streaming
	req.Zero(registry.Sessions())
	_, ok := registry.SinkFor(participantID)
	req.False(ok)
}

func TestRegistry_UnsubscribeSink_SparesReplacement(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	participantID := domain.ParticipantID(uuid.NewString())

	// Given a participant whose reconnect already replaced the old stream
	registry.Subscribe(participantID, Sink{name: "old-stream"})
	registry.Subscribe(participantID, Sink{name: "new-stream"})

	// When the old handler's deferred cleanup finally fires
	registry.UnsubscribeSink(participantID, Sink{name: "old-stream"})

	// Then the fresh connection keeps receiving events
	req.Equal(1, registry.Sessions())
	resolved, ok := registry.SinkFor(participantID)
	req.True(ok)
	req.Equal(Sink{name: "new-stream"}, resolved)
}
