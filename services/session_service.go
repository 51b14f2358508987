package services

import (
	"time"

	"arena-ledger/auth"
	"arena-ledger/domain"
	"arena-ledger/errors"
)

// SessionService issues and validates the signed session handle every
// authenticated call presents.
type SessionService struct {
	tokenDuration time.Duration
}

func NewSessionService(tokenDuration time.Duration) *SessionService {
	return &SessionService{tokenDuration: tokenDuration}
}

func (s *SessionService) Issue(p domain.Participant) (string, error) {
	token, err := auth.GenerateToken(p, s.tokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return token, nil
}

func (s *SessionService) Validate(token string) (domain.ParticipantID, error) {
	claims, err := auth.ValidateToken(token)
	if err != nil {
		return "", errors.ErrInvalidToken
	}
	return domain.ParticipantID(claims.ParticipantID), nil
}
