// Package projection builds local read models from observed events.
// Handles ordering and per-participant grouping.
// Does not emit events or mutate the ledger.
package projection

import (
	"context"
	"sync"

	"arena-ledger/domain"
	"arena-ledger/domain/event"
)

// BalancePoint is one step of a participant's balance history.
type BalancePoint struct {
	Delta   int64
	Balance domain.Balance
	Reason  string
}

// Timeline keeps the balance history of every participant, in the order
// events were fanned out. It is an in-process read model for debugging
// and the debug HTTP endpoints, never a source of truth.
type Timeline struct {
	mu      sync.RWMutex
	history map[domain.ParticipantID][]BalancePoint
}

func NewTimeline() *Timeline {
	return &Timeline{
		history: make(map[domain.ParticipantID][]BalancePoint),
	}
}

func (t *Timeline) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.BalanceChanged:
		t.mu.Lock()
		t.history[evt.PID] = append(t.history[evt.PID], fromEvent(evt))
		t.mu.Unlock()
	}
	return nil
}

// History returns a copy of one participant's balance trail.
func (t *Timeline) History(id domain.ParticipantID) []BalancePoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	points := t.history[id]
	out := make([]BalancePoint, len(points))
	copy(out, points)
	return out
}

func fromEvent(evt event.BalanceChanged) BalancePoint {
	return BalancePoint{
		Delta:   evt.Delta,
		Balance: evt.Balance,
		Reason:  evt.Reason,
	}
}
