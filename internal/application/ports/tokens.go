package ports

import (
	"context"
	"time"
)

// RefreshClaims is the decoded content of a valid refresh token.
type RefreshClaims struct {
	UserID      string
	TokenID     string
	RotatedFrom string
	ExpiresAt   time.Time
}

// TokenIssuer signs and validates JWTs (RS256). Access tokens are
// stateless; refresh tokens carry a jti so they can be revoked.
type TokenIssuer interface {
	IssueAccessToken(userID string, expiresInSeconds int64) (string, error)
	// IssueRefreshToken mints a refresh token. rotatedFrom is the jti of
	// the predecessor when the token is minted by a rotation, empty otherwise.
	IssueRefreshToken(userID, rotatedFrom string, expiresInSeconds int64) (token, tokenID string, err error)
	ValidateAccessToken(tokenString string) (userID string, err error)
	ValidateRefreshToken(tokenString string) (*RefreshClaims, error)
}

// TokenStore is the durable revocation set for refresh token ids.
// Revoke is idempotent; a revoked id must never be honored again.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// PurgeExpired drops entries whose token is past expiry anyway and
	// returns the number removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
