// Package auth mints and checks the session ticket the portal hands to a
// conversation session. The ticket binds a participant identity for the
// lifetime of the view.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims defines the structure of the data stored inside the ticket.
type SessionClaims struct {
	ParticipantID string   `json:"participant_id"`
	Name          string   `json:"name"`
	Roles         []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateTicket creates a signed session ticket for a participant.
func GenerateTicket(key []byte, participantID, name string, roles []string,
	ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		ParticipantID: participantID,
		Name:          name,
		Roles:         roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "parley",
		},
	}

	// HS256 (HMAC with SHA256); the key stays local to the portal.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateTicket parses a ticket and validates its signature and expiration.
func ValidateTicket(key []byte, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
