package event

import (
	"time"

	"arena-ledger/domain"

	"github.com/google/uuid"
)

// Telemetry is anything worth counting or logging by the observability
// pipeline. Domain events satisfy it too, so the fanout can forward them
// to the telemetry channel unchanged.
type Telemetry interface {
	OccurredAt() time.Time
}

// DomainEvent is a fact about a participant's balance or session,
// produced only by the authoritative side.
type DomainEvent interface {
	Telemetry
	Participant() domain.ParticipantID
}

// BalanceChanged is emitted after every successful mutation. It is the
// source of the replicated value pushed to the participant's display
// adapter, and of the journal and timeline projections.
type BalanceChanged struct {
	ID          uuid.UUID
	PID         domain.ParticipantID
	DisplayName string
	Delta       int64
	Balance     domain.Balance
	Reason      string
	At          time.Time
}

func (e BalanceChanged) Participant() domain.ParticipantID { return e.PID }
func (e BalanceChanged) OccurredAt() time.Time             { return e.At }

type ParticipantJoined struct {
	PID         domain.ParticipantID
	DisplayName string
	Balance     domain.Balance
	Rejoined    bool
	At          time.Time
}

func (e ParticipantJoined) Participant() domain.ParticipantID { return e.PID }
func (e ParticipantJoined) OccurredAt() time.Time             { return e.At }

type ParticipantLeft struct {
	PID domain.ParticipantID
	At  time.Time
}

func (e ParticipantLeft) Participant() domain.ParticipantID { return e.PID }
func (e ParticipantLeft) OccurredAt() time.Time             { return e.At }

// AdjustmentRejected reports an administrative command that the ledger
// refused. Rewards fail synchronously, so only async adjustments need it.
type AdjustmentRejected struct {
	PID   domain.ParticipantID
	Delta int64
	Cause string
	At    time.Time
}

func (e AdjustmentRejected) Participant() domain.ParticipantID { return e.PID }
func (e AdjustmentRejected) OccurredAt() time.Time             { return e.At }
