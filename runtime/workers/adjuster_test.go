package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/domain/event"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestAdjusterWorker_AppliesCorrection(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	ledger := domain.NewLedger(domain.DefaultStartingBalance)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	commands := make(chan domain.Command, 1)
	events := make(chan event.DomainEvent, 1)
	worker := NewAdjusterWorker(ledger, commands, events, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// When an administrative correction is dispatched
	commands <- domain.AdjustBalanceCommand{ID: alice.ID, Delta: -30, Reason: "refund rollback", At: time.Now().UTC()}

	// Then the ledger moved and a BalanceChanged event carries the new value
	select {
	case evt := <-events:
		changed, ok := evt.(event.BalanceChanged)
		req.True(ok)
		req.Equal(alice.ID, changed.PID)
		req.Equal("Alice", changed.DisplayName)
		req.Equal(int64(-30), changed.Delta)
		req.Equal(domain.Balance(70), changed.Balance)
		req.Equal("refund rollback", changed.Reason)
	case <-time.After(1 * time.Second):
		req.Fail("Expected a BalanceChanged event")
	}

	balance, err := ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(domain.Balance(70), balance)
}

func TestAdjusterWorker_RefusalEmitsRejection(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	ledger := domain.NewLedger(domain.DefaultStartingBalance)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	ledger.Join(alice)

	commands := make(chan domain.Command, 1)
	events := make(chan event.DomainEvent, 1)
	worker := NewAdjusterWorker(ledger, commands, events, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	// When a correction would drive the balance below zero
	commands <- domain.AdjustBalanceCommand{ID: alice.ID, Delta: -500, At: time.Now().UTC()}

	// Then the refusal surfaces as an event and the balance is untouched
	select {
	case evt := <-events:
		rejected, ok := evt.(event.AdjustmentRejected)
		req.True(ok)
		req.Equal(alice.ID, rejected.PID)
		req.Equal(int64(-500), rejected.Delta)
	case <-time.After(1 * time.Second):
		req.Fail("Expected an AdjustmentRejected event")
	}

	balance, err := ledger.Balance(alice.ID)
	req.NoError(err)
	req.Equal(domain.DefaultStartingBalance, balance)
}
