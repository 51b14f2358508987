package server

import (
	"context"
	"fmt"
	"log/slog"

	"arena-ledger/auth"
	"arena-ledger/contract"
	"arena-ledger/domain"
	"arena-ledger/domain/event"
	"arena-ledger/errors"
	pb "arena-ledger/proto/ledger"
	"arena-ledger/sink"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// LedgerServer is the transport boundary of the authoritative ledger.
// Identity is always taken from the validated session token injected by
// the auth interceptors; a participant_id carried in a request body is
// only ever checked against it, never trusted on its own.
type LedgerServer struct {
	pb.UnimplementedLedgerServiceServer
	log                  *slog.Logger
	ledgerService        contract.ILedgerService
	sessionService       contract.ISessionService
	rewardAmount         int64
	connectionBufferSize int
}

func NewLedgerServer(log *slog.Logger, ledgerService contract.ILedgerService,
	sessionService contract.ISessionService,
	rewardAmount int64, connectionBufferSize int) *LedgerServer {
	return &LedgerServer{
		log:                  log,
		ledgerService:        ledgerService,
		sessionService:       sessionService,
		rewardAmount:         rewardAmount,
		connectionBufferSize: connectionBufferSize,
	}
}

// Join admits a participant and hands back their identity, the
// authoritative balance and the session token for subsequent calls.
func (s *LedgerServer) Join(ctx context.Context, req *pb.JoinRequest) (*pb.JoinResponse, error) {
	p, balance, created, err := s.ledgerService.Join(ctx, req.DisplayName)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}

	token, err := s.sessionService.Issue(p)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}

	if !created {
		s.log.Info("Participant resumed a retained balance", "participant", p.ID)
	}

	return &pb.JoinResponse{
		ParticipantId: string(p.ID),
		DisplayName:   p.DisplayName,
		Balance:       int64(balance),
		Token:         token,
	}, nil
}

func (s *LedgerServer) Leave(ctx context.Context, req *pb.LeaveRequest) (*pb.LeaveResponse, error) {
	id, err := s.participantFromContext(ctx, req.ParticipantId)
	if err != nil {
		return nil, err
	}

	if err := s.ledgerService.Leave(ctx, id); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.LeaveResponse{Success: true}, nil
}

func (s *LedgerServer) GetBalance(ctx context.Context, req *pb.BalanceRequest) (*pb.BalanceResponse, error) {
	id, err := s.participantFromContext(ctx, req.ParticipantId)
	if err != nil {
		return nil, err
	}

	balance, err := s.ledgerService.GetBalance(ctx, id)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.BalanceResponse{
		ParticipantId: string(id),
		Balance:       int64(balance),
	}, nil
}

// RequestReward applies a reward and replies with the new authoritative
// balance. The client never computes the value; an omitted amount falls
// back to the server-configured reward.
func (s *LedgerServer) RequestReward(ctx context.Context, req *pb.RewardRequest) (*pb.BalanceResponse, error) {
	id, err := s.participantFromContext(ctx, req.ParticipantId)
	if err != nil {
		return nil, err
	}

	// Only an omitted amount falls back to the configured reward; an
	// explicit zero travels on to the ledger and is rejected there.
	amount := s.rewardAmount
	if req.Amount != nil {
		amount = req.GetAmount()
	}

	balance, err := s.ledgerService.RequestReward(ctx, id, amount)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &pb.BalanceResponse{
		ParticipantId: string(id),
		Balance:       int64(balance),
	}, nil
}

// Subscribe establishes the long-lived stream carrying replicated balance
// events to one participant. It registers a dedicated gRPC sink in the
// registry and blocks until the client disconnects.
// Proper cleanup is ensured via deferred unregistration to prevent memory
// leaks in the registry.
func (s *LedgerServer) Subscribe(req *pb.SubscribeRequest, stream pb.LedgerService_SubscribeServer) error {
	id, err := s.participantFromContext(stream.Context(), req.ParticipantId)
	if err != nil {
		return err
	}

	grpcSink := sink.NewGrpcSink(s.connectionBufferSize)
	s.ledgerService.Subscribe(id, grpcSink)
	// Tear down this stream's own sink only. A reconnect may have already
	// replaced it in the registry, and the replacement must survive this
	// handler's return.
	defer s.ledgerService.UnsubscribeSink(id, grpcSink)

	for {
		select {
		case <-stream.Context().Done():
			s.log.Warn(fmt.Sprintf("Participant %s disconnected from the balance stream", id))
			return nil
		case evt := <-grpcSink.Events():
			changed, ok := evt.(event.BalanceChanged)
			if !ok {
				continue
			}
			if err := stream.Send(toBalanceEvent(changed)); err != nil {
				s.log.Error("failed to push event to stream",
					"participant", id,
					"error", err)
				return err
			}
		}
	}
}

// participantFromContext resolves the caller's identity from the token
// claims placed in the context by the auth interceptors. When the request
// body also names a participant it must match; a mismatch means a client
// trying to act on someone else's balance.
func (s *LedgerServer) participantFromContext(ctx context.Context, claimed string) (domain.ParticipantID, error) {
	value, ok := ctx.Value(auth.ParticipantIDKey).(string)
	if !ok || value == "" {
		return "", status.Error(codes.Unauthenticated, "participant identity is missing")
	}
	if claimed != "" && claimed != value {
		return "", status.Error(codes.PermissionDenied, "participant mismatch")
	}
	return domain.ParticipantID(value), nil
}

func toBalanceEvent(e event.BalanceChanged) *pb.BalanceEvent {
	return &pb.BalanceEvent{
		ParticipantId: string(e.PID),
		DisplayName:   e.DisplayName,
		Balance:       int64(e.Balance),
		Delta:         e.Delta,
		Reason:        e.Reason,
		At:            timestamppb.New(e.At),
	}
}
