package auth

import (
	"strings"
	"testing"
	"time"

	"arena-ledger/domain"
	"arena-ledger/errors"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}

	token, err := GenerateToken(alice, 1*time.Hour)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("alice-session", claims.ParticipantID)
	req.Equal("Alice", claims.DisplayName)
	req.Equal("arena-ledger", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)
	alice := domain.Participant{ID: "alice-session", DisplayName: "Alice"}

	token, err := GenerateToken(alice, -1*time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("not-a-token")
	req.Error(err)
}

func TestJoinValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     JoinRequest
		wantErr bool
	}{
		{"Valid name", JoinRequest{"Alice"}, false},
		{"Valid name with space", JoinRequest{"Arena Fan"}, false},
		{"Missing name", JoinRequest{""}, true},
		{"Too short", JoinRequest{"A"}, true},
		{"Too long", JoinRequest{strings.Repeat("a", 25)}, true},
		{"Leading space", JoinRequest{" Alice"}, true},
		{"Control character", JoinRequest{"Ali\tce"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJoin(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestJoinValidation_NonDisplayableName(t *testing.T) {
	req := require.New(t)

	err := ValidateJoin(JoinRequest{"Ali\ace"})
	req.ErrorIs(err, errors.ErrNameRejected)
}
