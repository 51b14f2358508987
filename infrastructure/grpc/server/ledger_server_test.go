package server

import (
	"context"
	"log/slog"
	"testing"

	"arena-ledger/auth"
	"arena-ledger/domain"
	"arena-ledger/errors"
	"arena-ledger/mocks"
	pb "arena-ledger/proto/ledger"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newServer(t *testing.T) (*LedgerServer, *mocks.MockILedgerService, *mocks.MockISessionService) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	ledgerService := mocks.NewMockILedgerService(ctrl)
	sessionService := mocks.NewMockISessionService(ctrl)
	return NewLedgerServer(log, ledgerService, sessionService, domain.DefaultRewardAmount, 16), ledgerService, sessionService
}

func authenticated(id string) context.Context {
	return context.WithValue(context.Background(), auth.ParticipantIDKey, id)
}

func TestLedgerServer_Join(t *testing.T) {
	req := require.New(t)
	server, ledgerService, sessionService := newServer(t)

	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}
	ledgerService.EXPECT().
		Join(gomock.Any(), "Alice").
		Return(alice, domain.DefaultStartingBalance, true, nil).
		Times(1)
	sessionService.EXPECT().Issue(alice).Return("signed-token", nil).Times(1)

	resp, err := server.Join(context.Background(), &pb.JoinRequest{DisplayName: "Alice"})

	req.NoError(err)
	req.Equal("alice-session", resp.ParticipantId)
	req.Equal("Alice", resp.DisplayName)
	req.Equal(int64(100), resp.Balance)
	req.Equal("signed-token", resp.Token)
}

func TestLedgerServer_Join_RejectedName(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		Join(gomock.Any(), "A").
		Return(domain.Participant{}, domain.Balance(0), false, errors.ErrNameRejected).
		Times(1)

	_, err := server.Join(context.Background(), &pb.JoinRequest{DisplayName: "A"})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.InvalidArgument, st.Code())
}

func TestLedgerServer_RequestReward(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		RequestReward(gomock.Any(), domain.ParticipantID("alice-session"), int64(10)).
		Return(domain.Balance(110), nil).
		Times(1)

	// An omitted amount falls back to the configured reward
	resp, err := server.RequestReward(authenticated("alice-session"), &pb.RewardRequest{})

	req.NoError(err)
	req.Equal(int64(110), resp.Balance)
	req.Equal("alice-session", resp.ParticipantId)
}

func TestLedgerServer_RequestReward_NegativeAmount(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		RequestReward(gomock.Any(), domain.ParticipantID("alice-session"), int64(-5)).
		Return(domain.Balance(0), errors.ErrInvalidAmount).
		Times(1)

	_, err := server.RequestReward(authenticated("alice-session"), &pb.RewardRequest{Amount: lo.ToPtr(int64(-5))})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.InvalidArgument, st.Code())
}

func TestLedgerServer_RequestReward_ExplicitZero(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	// An explicit zero is not the omitted-amount fallback: it must reach
	// the ledger and be rejected there
	ledgerService.EXPECT().
		RequestReward(gomock.Any(), domain.ParticipantID("alice-session"), int64(0)).
		Return(domain.Balance(0), errors.ErrInvalidAmount).
		Times(1)

	_, err := server.RequestReward(authenticated("alice-session"), &pb.RewardRequest{Amount: lo.ToPtr(int64(0))})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.InvalidArgument, st.Code())
}

func TestLedgerServer_RequestReward_WithoutIdentity(t *testing.T) {
	req := require.New(t)
	server, _, _ := newServer(t)

	_, err := server.RequestReward(context.Background(), &pb.RewardRequest{})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.Unauthenticated, st.Code())
}

func TestLedgerServer_RequestReward_ParticipantMismatch(t *testing.T) {
	req := require.New(t)
	server, _, _ := newServer(t)

	// The request claims someone else's identifier
	_, err := server.RequestReward(authenticated("alice-session"), &pb.RewardRequest{ParticipantId: "bob-session"})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.PermissionDenied, st.Code())
}

func TestLedgerServer_Leave(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		Leave(gomock.Any(), domain.ParticipantID("alice-session")).
		Return(nil).
		Times(1)

	resp, err := server.Leave(authenticated("alice-session"), &pb.LeaveRequest{})

	req.NoError(err)
	req.True(resp.Success)
}

func TestLedgerServer_Leave_AlreadyDisconnected(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		Leave(gomock.Any(), domain.ParticipantID("alice-session")).
		Return(errors.ErrAlreadyDisconnected).
		Times(1)

	_, err := server.Leave(authenticated("alice-session"), &pb.LeaveRequest{})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.FailedPrecondition, st.Code())
}

func TestLedgerServer_GetBalance_Unknown(t *testing.T) {
	req := require.New(t)
	server, ledgerService, _ := newServer(t)

	ledgerService.EXPECT().
		GetBalance(gomock.Any(), domain.ParticipantID("ghost")).
		Return(domain.Balance(0), errors.ErrNotFound).
		Times(1)

	_, err := server.GetBalance(authenticated("ghost"), &pb.BalanceRequest{})

	req.Error(err)
	st, ok := status.FromError(err)
	req.True(ok)
	req.Equal(codes.NotFound, st.Code())
}
