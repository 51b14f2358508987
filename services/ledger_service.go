package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"arena-ledger/auth"
	"arena-ledger/contract"
	"arena-ledger/domain"
	"arena-ledger/errors"
	"arena-ledger/moderation"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// LedgerService is the application facade between the transport layer and
// the orchestrator. It owns the join-time policies: display-name
// validation, moderation, and identity assignment.
type LedgerService struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	sessions     contract.ISessionService
	moderator    moderation.Moderator
}

func NewLedgerService(log *slog.Logger, orchestrator contract.IOrchestrator,
	sessions contract.ISessionService, moderator moderation.Moderator) *LedgerService {
	return &LedgerService{
		log:          log,
		orchestrator: orchestrator,
		sessions:     sessions,
		moderator:    moderator,
	}
}

// Join admits a participant. The display name is validated and censored
// before anything reaches the ledger.
//
// Identity is assigned server side: a first join mints a fresh identifier,
// while a caller presenting a still-valid session token on the (otherwise
// public) Join call is recognized as a reconnect and resumes the balance
// retained under that identifier.
func (s *LedgerService) Join(ctx context.Context, displayName string) (domain.Participant, domain.Balance, bool, error) {
	if err := auth.ValidateJoin(auth.JoinRequest{DisplayName: displayName}); err != nil {
		return domain.Participant{}, 0, false, fmt.Errorf("%w: %v", errors.ErrNameRejected, err)
	}

	censored, flagged := s.moderator.Censor(displayName)
	if flagged {
		s.log.Info("Display name moderated", "original", displayName, "censored", censored)
	}

	p := domain.Participant{
		ID:          s.resolveIdentity(ctx),
		DisplayName: censored,
		JoinedAt:    time.Now().UTC(),
	}

	balance, created := s.orchestrator.Join(p)
	return p, balance, created, nil
}

// resolveIdentity reuses the identifier of a presented, still-valid
// session token, or mints a new one. Join is a public method so the
// token, when present, is read here rather than by the interceptor.
func (s *LedgerService) resolveIdentity(ctx context.Context) domain.ParticipantID {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			tokenStr := strings.TrimPrefix(values[0], "Bearer ")
			if id, err := s.sessions.Validate(tokenStr); err == nil {
				return id
			}
			s.log.Debug("Stale token on join, assigning a fresh identity")
		}
	}
	return domain.ParticipantID(uuid.NewString())
}

func (s *LedgerService) Leave(ctx context.Context, id domain.ParticipantID) error {
	return s.orchestrator.Leave(id)
}

func (s *LedgerService) RequestReward(ctx context.Context, id domain.ParticipantID, amount int64) (domain.Balance, error) {
	return s.orchestrator.RequestReward(id, amount)
}

func (s *LedgerService) GetBalance(ctx context.Context, id domain.ParticipantID) (domain.Balance, error) {
	return s.orchestrator.GetBalance(id)
}

func (s *LedgerService) Subscribe(id domain.ParticipantID, sink contract.EventSink) {
	s.orchestrator.Subscribe(id, sink)
}

func (s *LedgerService) Unsubscribe(id domain.ParticipantID) {
	s.orchestrator.Unsubscribe(id)
}

func (s *LedgerService) UnsubscribeSink(id domain.ParticipantID, sink contract.EventSink) {
	s.orchestrator.UnsubscribeSink(id, sink)
}

// AdjustBalance queues an administrative correction; the adjuster pool
// applies it and reports the outcome as an event.
func (s *LedgerService) AdjustBalance(cmd domain.AdjustBalanceCommand) {
	s.orchestrator.Dispatch(cmd)
}
