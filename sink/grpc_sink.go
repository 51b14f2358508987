package sink

import (
	"context"

	"arena-ledger/domain/event"
)

// GrpcSink bridges the fanout to one participant's Subscribe stream.
// Consume runs on the fanout goroutine and the stream handler drains
// Events, so delivery is decoupled by a buffered channel. A subscriber
// too slow to drain its buffer trips the fanout's sink timeout and the
// event is dropped for them.
type GrpcSink struct {
	events chan event.DomainEvent
}

func NewGrpcSink(buffer int) *GrpcSink {
	return &GrpcSink{events: make(chan event.DomainEvent, buffer)}
}

func (s *GrpcSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events is drained by the stream handler.
func (s *GrpcSink) Events() <-chan event.DomainEvent {
	return s.events
}
