package domain

import "time"

type Command interface {
	Participant() ParticipantID
}

// AdjustBalanceCommand is an administrative balance correction.
// It flows through the orchestrator's command channel and is applied
// asynchronously by a supervised worker, unlike reward requests which
// are synchronous.
type AdjustBalanceCommand struct {
	ID     ParticipantID
	Delta  int64
	Reason string
	At     time.Time
}

func (c AdjustBalanceCommand) Participant() ParticipantID {
	return c.ID
}
