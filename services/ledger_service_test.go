package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/errors"
	"arena-ledger/mocks"
	"arena-ledger/moderation"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/metadata"
)

func newService(t *testing.T) (*LedgerService, *mocks.MockIOrchestrator, *mocks.MockISessionService) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	sessions := mocks.NewMockISessionService(ctrl)

	moderator, err := moderation.NewModerator([]string{"admin"}, '*')
	require.NoError(t, err)

	return NewLedgerService(log, orchestrator, sessions, moderator), orchestrator, sessions
}

func TestLedgerService_Join_MintsIdentityAndAdmits(t *testing.T) {
	req := require.New(t)
	service, orchestrator, _ := newService(t)

	orchestrator.EXPECT().
		Join(gomock.Any()).
		DoAndReturn(func(p domain.Participant) (domain.Balance, bool) {
			req.NotEmpty(p.ID)
			req.Equal("Alice", p.DisplayName)
			return domain.DefaultStartingBalance, true
		}).
		Times(1)

	p, balance, created, err := service.Join(context.Background(), "Alice")

	req.NoError(err)
	req.True(created)
	req.Equal(domain.DefaultStartingBalance, balance)
	req.NotEmpty(p.ID)
}

func TestLedgerService_Join_RejectsInvalidName(t *testing.T) {
	req := require.New(t)
	service, _, _ := newService(t)

	// Too short, no orchestrator interaction expected
	_, _, _, err := service.Join(context.Background(), "A")

	req.ErrorIs(err, errors.ErrNameRejected)
}

func TestLedgerService_Join_CensorsDisplayName(t *testing.T) {
	req := require.New(t)
	service, orchestrator, _ := newService(t)

	orchestrator.EXPECT().
		Join(gomock.Any()).
		DoAndReturn(func(p domain.Participant) (domain.Balance, bool) {
			// The stored name is the censored one
			req.Equal("***** Alice", p.DisplayName)
			return domain.DefaultStartingBalance, true
		}).
		Times(1)

	_, _, _, err := service.Join(context.Background(), "Admin Alice")
	req.NoError(err)
}

func TestLedgerService_Join_ResumesIdentityFromToken(t *testing.T) {
	req := require.New(t)
	service, orchestrator, sessions := newService(t)

	alice := domain.ParticipantID("alice-session")
	sessions.EXPECT().Validate("valid-token").Return(alice, nil).Times(1)

	orchestrator.EXPECT().
		Join(gomock.Any()).
		DoAndReturn(func(p domain.Participant) (domain.Balance, bool) {
			req.Equal(alice, p.ID)
			return domain.Balance(110), false
		}).
		Times(1)

	md := metadata.Pairs("authorization", "Bearer valid-token")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	p, balance, created, err := service.Join(ctx, "Alice")

	req.NoError(err)
	req.False(created)
	req.Equal(domain.Balance(110), balance)
	req.Equal(alice, p.ID)
}

func TestLedgerService_Join_StaleTokenMintsFreshIdentity(t *testing.T) {
	req := require.New(t)
	service, orchestrator, sessions := newService(t)

	sessions.EXPECT().Validate("stale-token").Return(domain.ParticipantID(""), errors.ErrInvalidToken).Times(1)

	orchestrator.EXPECT().
		Join(gomock.Any()).
		DoAndReturn(func(p domain.Participant) (domain.Balance, bool) {
			req.NotEqual(domain.ParticipantID(""), p.ID)
			return domain.DefaultStartingBalance, true
		}).
		Times(1)

	md := metadata.Pairs("authorization", "Bearer stale-token")
	ctx := metadata.NewIncomingContext(context.Background(), md)

	_, _, created, err := service.Join(ctx, "Alice")

	req.NoError(err)
	req.True(created)
}

func TestLedgerService_AdjustBalance_Dispatches(t *testing.T) {
	service, orchestrator, _ := newService(t)

	cmd := domain.AdjustBalanceCommand{ID: "alice-session", Delta: -10, Reason: "correction", At: time.Now().UTC()}
	orchestrator.EXPECT().Dispatch(cmd).Times(1)

	service.AdjustBalance(cmd)
}
