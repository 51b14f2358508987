package workers

import (
	"context"
	"log/slog"

	"arena-ledger/domain/event"
)

// TelemetryWorker drains the telemetry channel and hands each event to
// the registered handlers (counters, log writers). It sits at the end of
// the pipeline so a slow handler only ever costs observability, never a
// participant-facing call.
type TelemetryWorker struct {
	log           *slog.Logger
	telemetryChan chan event.Telemetry
	handlers      []event.Handler
}

func NewTelemetryWorker(log *slog.Logger,
	telemetryChan chan event.Telemetry,
	handlers []event.Handler) *TelemetryWorker {
	return &TelemetryWorker{
		log:           log,
		telemetryChan: telemetryChan,
		handlers:      handlers,
	}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry drain")
			return nil
		case evt := <-w.telemetryChan:
			w.handle(evt)
		}
	}
}

func (w *TelemetryWorker) handle(evt event.Telemetry) {
	for _, h := range w.handlers {
		h.Handle(evt)
	}
}
