package projection

import (
	"context"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTimeline_BuildsPerParticipantHistory(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()
	ctx := context.Background()

	steps := []struct {
		delta   int64
		balance domain.Balance
		reason  string
	}{
		{10, 110, "reward"},
		{10, 120, "reward"},
		{-30, 90, "penalty"},
	}
	for _, step := range steps {
		err := timeline.Consume(ctx, event.BalanceChanged{
			ID:      uuid.New(),
			PID:     "alice-session",
			Delta:   step.delta,
			Balance: step.balance,
			Reason:  step.reason,
			At:      time.Now().UTC(),
		})
		req.NoError(err)
	}

	// Another participant's event lands in a separate trail
	req.NoError(timeline.Consume(ctx, event.BalanceChanged{PID: "bob-session", Delta: 10, Balance: 110}))

	history := timeline.History("alice-session")
	req.Len(history, 3)
	req.Equal(domain.Balance(110), history[0].Balance)
	req.Equal(domain.Balance(90), history[2].Balance)
	req.Equal("penalty", history[2].Reason)

	req.Len(timeline.History("bob-session"), 1)
	req.Empty(timeline.History("ghost"))
}

func TestTimeline_IgnoresLifecycleEvents(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline()

	req.NoError(timeline.Consume(context.Background(), event.ParticipantJoined{PID: "alice-session"}))

	req.Empty(timeline.History("alice-session"))
}
