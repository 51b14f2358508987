package domain

import (
	"arena-ledger/errors"
	"sync"
)

type account struct {
	displayName string
	balance     Balance
	connected   bool
}

// Ledger is the sole authority over balance mutation.
// Balances are keyed by participant identifier and survive disconnects
// for the lifetime of the process; nothing is persisted across restarts.
//
// gRPC handlers run concurrently, so every operation is a critical
// section: Credit and Adjust are read-modify-write.
type Ledger struct {
	mu       sync.RWMutex
	starting Balance
	accounts map[ParticipantID]*account
}

func NewLedger(starting Balance) *Ledger {
	return &Ledger{
		starting: starting,
		accounts: make(map[ParticipantID]*account),
	}
}

// Join starts tracking a participant at the configured starting value.
// Joining is idempotent per identifier: a re-join returns the existing
// balance instead of resetting it, so a reconnect never discards progress.
// The second return value reports whether a new record was created.
func (l *Ledger) Join(p Participant) (Balance, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc, ok := l.accounts[p.ID]; ok {
		acc.connected = true
		acc.displayName = p.DisplayName
		return acc.balance, false
	}

	l.accounts[p.ID] = &account{
		displayName: p.DisplayName,
		balance:     l.starting,
		connected:   true,
	}
	return l.starting, true
}

// Leave marks the participant as disconnected. The balance record is
// retained so a later re-join resumes where it left off.
func (l *Ledger) Leave(id ParticipantID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return errors.ErrNotFound
	}
	if !acc.connected {
		return errors.ErrAlreadyDisconnected
	}
	acc.connected = false
	return nil
}

// Credit applies a validated reward: the amount must be strictly positive
// and the participant must be tracked and connected. On success the
// balance is incremented atomically and the new value returned; on failure
// no state changes.
func (l *Ledger) Credit(id ParticipantID, amount int64) (Balance, error) {
	if amount <= 0 {
		return 0, errors.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return 0, errors.ErrNotFound
	}
	if !acc.connected {
		return 0, errors.ErrAlreadyDisconnected
	}
	acc.balance += Balance(amount)
	return acc.balance, nil
}

// Adjust applies an administrative delta, which may be negative.
// The balance invariant still holds: an adjustment that would drive the
// balance below zero is rejected with ErrInvalidAmount and changes nothing.
func (l *Ledger) Adjust(id ParticipantID, delta int64) (Balance, error) {
	if delta == 0 {
		return 0, errors.ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[id]
	if !ok {
		return 0, errors.ErrNotFound
	}
	next := acc.balance + Balance(delta)
	if next < 0 {
		return 0, errors.ErrInvalidAmount
	}
	acc.balance = next
	return acc.balance, nil
}

// Balance is a read-only lookup. It answers for disconnected participants
// too, since their record is retained until the process stops.
func (l *Ledger) Balance(id ParticipantID) (Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[id]
	if !ok {
		return 0, errors.ErrNotFound
	}
	return acc.balance, nil
}

// DisplayName returns the last known display name for a tracked participant.
func (l *Ledger) DisplayName(id ParticipantID) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[id]
	if !ok {
		return "", errors.ErrNotFound
	}
	return acc.displayName, nil
}

// Tracked reports how many participants currently have a balance record.
func (l *Ledger) Tracked() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}
