package sink

import (
	"context"
	"fmt"
	"log/slog"

	"arena-ledger/domain/event"
	"arena-ledger/repositories"
)

// JournalSink appends every balance mutation to the audit journal.
type JournalSink struct {
	repository repositories.IJournalRepository
	log        *slog.Logger
}

func NewJournalSink(repository repositories.IJournalRepository, log *slog.Logger) JournalSink {
	return JournalSink{repository: repository, log: log}
}

func (s JournalSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.BalanceChanged:
		return s.repository.Append(toJournalRecord(evt))
	default:
		s.log.Debug(fmt.Sprintf("Not journaled event : %v", evt))
		return nil
	}
}

func toJournalRecord(evt event.BalanceChanged) repositories.JournalRecord {
	return repositories.JournalRecord{
		ID:          evt.ID,
		Participant: evt.PID,
		Amount:      evt.Delta,
		Balance:     evt.Balance,
		Reason:      evt.Reason,
		At:          evt.At,
	}
}
