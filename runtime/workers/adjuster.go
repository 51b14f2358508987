package workers

import (
	"context"
	"log/slog"
	"time"

	"arena-ledger/contract"
	"arena-ledger/domain"
	"arena-ledger/domain/event"

	"github.com/google/uuid"
)

// Ensure *AdjusterWorker implements the contract.Worker interface at compile time.
var _ contract.Worker = (*AdjusterWorker)(nil)

// AdjusterWorker drains the administrative command channel and applies
// balance corrections against the authoritative ledger. Corrections are
// asynchronous on purpose: unlike rewards, no caller is waiting on the
// new value, so they go through the pool instead of the request path.
type AdjusterWorker struct {
	ledger   *domain.Ledger
	commands chan domain.Command
	events   chan event.DomainEvent
	log      *slog.Logger
}

func NewAdjusterWorker(
	ledger *domain.Ledger,
	commands chan domain.Command,
	events chan event.DomainEvent,
	log *slog.Logger) *AdjusterWorker {
	return &AdjusterWorker{
		ledger:   ledger,
		commands: commands,
		events:   events,
		log:      log,
	}
}

func (w *AdjusterWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			adjustCmd, ok := cmd.(domain.AdjustBalanceCommand)
			if !ok {
				w.log.Warn("Unknown command type, dropping", "participant", cmd.Participant())
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case w.events <- w.apply(adjustCmd):
			}
		}
	}
}

// apply mutates the ledger and reports the outcome as a domain event,
// success and refusal alike. The refusal event is what an operator
// console sees when a correction would cross zero.
func (w *AdjusterWorker) apply(cmd domain.AdjustBalanceCommand) event.DomainEvent {
	balance, err := w.ledger.Adjust(cmd.ID, cmd.Delta)
	if err != nil {
		w.log.Warn("Adjustment refused", "participant", cmd.ID, "delta", cmd.Delta, "error", err)
		return event.AdjustmentRejected{
			PID:   cmd.ID,
			Delta: cmd.Delta,
			Cause: err.Error(),
			At:    time.Now().UTC(),
		}
	}

	name, _ := w.ledger.DisplayName(cmd.ID)
	return event.BalanceChanged{
		ID:          uuid.New(),
		PID:         cmd.ID,
		DisplayName: name,
		Delta:       cmd.Delta,
		Balance:     balance,
		Reason:      cmd.Reason,
		At:          cmd.At,
	}
}
