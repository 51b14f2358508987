package workers

import (
	"context"
	"log/slog"
	"time"

	"arena-ledger/contract"
	"arena-ledger/domain/event"
)

// EventFanout broadcasts domain events to multiple in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
//
// Permanent sinks (journal, timeline, logs) receive every event. The
// participant the event concerns additionally receives it through their
// registered connection, which is how the replicated balance reaches the
// display adapter.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log            *slog.Logger
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	domainEvents   chan event.DomainEvent
	telemetry      chan event.Telemetry
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger,
	permanentSinks []contract.EventSink,
	registry contract.IRegistry,
	domainEvents chan event.DomainEvent,
	telemetry chan event.Telemetry,
	sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		domainEvents:   domainEvents,
		telemetry:      telemetry,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvents:
			w.Fanout(ctx, evt)
			select {
			case w.telemetry <- evt:
			default:
				w.log.Debug("Observability telemetry event lost")
			}
		case <-ctx.Done():
			w.log.Debug("Context done, stopping domainEvent send")
			return nil
		}
	}
}

// Fanout delivers one event to every permanent sink plus the connection
// of the participant it concerns, each under the sink timeout. A slow or
// failing sink is logged and skipped; it never blocks the pipeline.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := w.permanentSinks
	if targeted, ok := w.registry.SinkFor(evt.Participant()); ok {
		sinks = append(sinks[:len(sinks):len(sinks)], targeted)
	}

	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Debug("Sink refused event", "participant", evt.Participant(), "error", err)
		}
		cancel()
	}
}
