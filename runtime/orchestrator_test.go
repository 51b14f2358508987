package runtime

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/domain/event"
	"arena-ledger/errors"
	"arena-ledger/runtime/workers"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator() *Orchestrator {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewOrchestrator(log,
		domain.NewLedger(domain.DefaultStartingBalance),
		workers.NewSupervisor(log),
		NewRegistry(),
		2, 64,
		time.Second, time.Minute)
}

func drainOne(t *testing.T, o *Orchestrator) event.DomainEvent {
	t.Helper()
	select {
	case evt := <-o.domainEvents:
		return evt
	case <-time.After(time.Second):
		t.Fatal("Expected a domain event")
		return nil
	}
}

func TestOrchestrator_Join_PublishesAnnouncement(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}

	balance, created := o.Join(alice)

	req.True(created)
	req.Equal(domain.DefaultStartingBalance, balance)

	evt, ok := drainOne(t, o).(event.ParticipantJoined)
	req.True(ok)
	req.Equal(alice.ID, evt.PID)
	req.False(evt.Rejoined)
}

func TestOrchestrator_RequestReward_ReturnsAuthoritativeBalance(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	o.Join(alice)
	drainOne(t, o)

	balance, err := o.RequestReward(alice.ID, domain.DefaultRewardAmount)

	req.NoError(err)
	req.Equal(domain.Balance(110), balance)

	// And the replicated value rides a BalanceChanged event
	evt, ok := drainOne(t, o).(event.BalanceChanged)
	req.True(ok)
	req.Equal(domain.Balance(110), evt.Balance)
	req.Equal(int64(10), evt.Delta)
	req.Equal("reward", evt.Reason)
	req.Equal("Alice", evt.DisplayName)
}

func TestOrchestrator_RequestReward_RejectionPublishesNothing(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	o.Join(alice)
	drainOne(t, o)

	_, err := o.RequestReward(alice.ID, -5)
	req.ErrorIs(err, errors.ErrInvalidAmount)

	_, err = o.RequestReward("ghost", 10)
	req.ErrorIs(err, errors.ErrNotFound)

	// Then no event reached the pipeline
	select {
	case evt := <-o.domainEvents:
		req.Failf("Unexpected event", "%T", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestOrchestrator_Leave_DropsConnection(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	o.Join(alice)
	drainOne(t, o)
	o.Subscribe(alice.ID, Sink{})

	req.NoError(o.Leave(alice.ID))

	_, ok := o.registry.SinkFor(alice.ID)
	req.False(ok)

	evt, isLeft := drainOne(t, o).(event.ParticipantLeft)
	req.True(isLeft)
	req.Equal(alice.ID, evt.PID)

	// And leaving twice surfaces the precondition failure
	req.ErrorIs(o.Leave(alice.ID), errors.ErrAlreadyDisconnected)
}

func TestOrchestrator_DispatchedAdjustmentFlowsToSinks(t *testing.T) {
	req := require.New(t)
	o := newTestOrchestrator()
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	o.Join(alice)

	received := make(chan event.DomainEvent, 8)
	o.Add(sinkFunc(func(ctx context.Context, e event.DomainEvent) error {
		received <- e
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go o.Start(ctx)
	defer o.Stop()

	// When an administrative correction is dispatched
	o.Dispatch(domain.AdjustBalanceCommand{ID: alice.ID, Delta: -40, Reason: "penalty", At: time.Now().UTC()})

	// Then the pipeline delivers the join announcement and the correction
	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-received:
			if changed, ok := evt.(event.BalanceChanged); ok {
				req.Equal(domain.Balance(60), changed.Balance)
				req.Equal("penalty", changed.Reason)
				return
			}
		case <-deadline:
			req.Fail("Expected a BalanceChanged event from the adjuster pool")
		}
	}
}

type sinkFunc func(ctx context.Context, e event.DomainEvent) error

func (f sinkFunc) Consume(ctx context.Context, e event.DomainEvent) error { return f(ctx, e) }
