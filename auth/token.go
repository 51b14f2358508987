package auth

import (
	"time"

	"arena-ledger/domain"

	"github.com/golang-jwt/jwt/v5"
)

// jwtKey is the secret used to sign tokens.
// In a production environment, this should be loaded from an environment variable or a secret manager.
var jwtKey = []byte("my_strong_and_long_secret_key_2026")

// SessionClaims defines the structure of the data stored inside the JWT.
// The participant identifier is the only thing the server trusts from a
// presented token; everything else is resolved server side.
type SessionClaims struct {
	ParticipantID string `json:"participant_id"`
	DisplayName   string `json:"display_name"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed session token for a participant.
func GenerateToken(p domain.Participant, sessionTokenDuration time.Duration) (string, error) {
	expirationTime := time.Now().Add(sessionTokenDuration)

	claims := &SessionClaims{
		ParticipantID: string(p.ID),
		DisplayName:   p.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "arena-ledger",
		},
	}

	// Create the token using the HS256 algorithm (HMAC with SHA256).
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	// Sign the token with the server's secret key.
	return token.SignedString(jwtKey)
}

// ValidateToken parses and validates the signature and expiration of a JWT string.
func ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
