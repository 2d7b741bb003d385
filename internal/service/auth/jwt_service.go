// Package auth verifies the signed credentials principals present when they
// connect: the session cookie carried on the websocket handshake and the
// bearer token on the notification query API. Session issuance (login,
// refresh) is owned by the identity side of the system; this service only
// needs to validate what that side signed.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for verifying JWT session credentials.
type JWTService interface {
	// GenerateToken creates a signed JWT access token containing the user's
	// information. Used by operational tooling and tests; production tokens
	// are minted by the identity service with the same shared secret.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns the claims containing user information if the token is valid,
	// or an error if validation fails (expired, invalid signature, etc.).
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the custom claims structure for the JWT tokens.
// It extends standard JWT registered claims with application-specific fields.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
