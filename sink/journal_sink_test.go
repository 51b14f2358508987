package sink_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"arena-ledger/domain/event"
	"arena-ledger/mocks"
	"arena-ledger/repositories"
	"arena-ledger/sink"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestJournalSink_Consume(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIJournalRepository(ctrl)
	// Silencing logs for clean test output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := sink.NewJournalSink(mockRepo, logger)

	evt := event.BalanceChanged{
		ID:          uuid.New(),
		PID:         "alice-session",
		DisplayName: "Alice",
		Delta:       10,
		Balance:     110,
		Reason:      "reward",
		At:          time.Now().UTC(),
	}

	mockRepo.EXPECT().
		Append(gomock.Any()).
		DoAndReturn(func(record repositories.JournalRecord) error {
			req.Equal(evt.ID, record.ID)
			req.Equal(evt.PID, record.Participant)
			req.Equal(int64(10), record.Amount)
			req.Equal(evt.Balance, record.Balance)
			req.Equal("reward", record.Reason)
			return nil
		}).
		Times(1)

	req.NoError(s.Consume(context.Background(), evt))
}

func TestJournalSink_IgnoresOtherEvents(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIJournalRepository(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := sink.NewJournalSink(mockRepo, logger)

	// No Append expected for session lifecycle events
	evt := event.ParticipantJoined{PID: "alice-session", At: time.Now().UTC()}

	req.NoError(s.Consume(context.Background(), evt))
}

func TestGrpcSink_ConsumeAndDrain(t *testing.T) {
	req := require.New(t)
	s := sink.NewGrpcSink(2)

	evt := event.BalanceChanged{PID: "alice-session", Balance: 110}
	req.NoError(s.Consume(context.Background(), evt))

	select {
	case got := <-s.Events():
		req.Equal(evt, got)
	default:
		req.Fail("Expected a buffered event")
	}
}

func TestGrpcSink_FullBufferHonorsContext(t *testing.T) {
	req := require.New(t)
	s := sink.NewGrpcSink(1)

	req.NoError(s.Consume(context.Background(), event.BalanceChanged{}))

	// Buffer is full, a canceled context releases the producer
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Consume(ctx, event.BalanceChanged{})
	req.ErrorIs(err, context.DeadlineExceeded)
}
