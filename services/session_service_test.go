package services

import (
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/errors"

	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndValidate(t *testing.T) {
	req := require.New(t)
	service := NewSessionService(1 * time.Hour)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}

	token, err := service.Issue(alice)
	req.NoError(err)
	req.NotEmpty(token)

	id, err := service.Validate(token)
	req.NoError(err)
	req.Equal(alice.ID, id)
}

func TestSessionService_Validate_Garbage(t *testing.T) {
	req := require.New(t)
	service := NewSessionService(1 * time.Hour)

	_, err := service.Validate("garbage")
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestSessionService_Validate_Expired(t *testing.T) {
	req := require.New(t)
	service := NewSessionService(-1 * time.Minute)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}

	token, err := service.Issue(alice)
	req.NoError(err)

	_, err = service.Validate(token)
	req.ErrorIs(err, errors.ErrInvalidToken)
}
