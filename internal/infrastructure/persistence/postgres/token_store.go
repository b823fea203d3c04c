package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcg0006/plockly-core/internal/application/ports"
)

const (
	revokeTokenSQL = `
INSERT INTO revoked_tokens (token_id, user_id, revoked_at, expires_at)
VALUES ($1, $2, NOW(), $3)
ON CONFLICT (token_id) DO NOTHING`

	isRevokedSQL    = `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = $1)`
	purgeExpiredSQL = `DELETE FROM revoked_tokens WHERE expires_at < $1`
)

// TokenStore is the durable revocation set for refresh token jtis.
// Lookup is a primary-key hit; Revoke is idempotent via ON CONFLICT, so
// concurrent double-revokes commute.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) Revoke(ctx context.Context, tokenID, userID string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx, revokeTokenSQL, tokenID, userID, expiresAt)
	return err
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := s.pool.QueryRow(ctx, isRevokedSQL, tokenID).Scan(&revoked)
	return revoked, err
}

// PurgeExpired removes entries whose token is past expiry; the signed
// expiry check already blocks those tokens, the row is just dead weight.
func (s *TokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, purgeExpiredSQL, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Ensure TokenStore implements ports.TokenStore.
var _ ports.TokenStore = (*TokenStore)(nil)
