package auth

import (
	"context"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

type LogoutInput struct {
	RefreshToken string
}

// Logout revokes the presented refresh token. Revoking an already
// revoked token succeeds; only a token that fails signature or expiry
// checks is an error.
type Logout struct {
	issuer ports.TokenIssuer
	store  ports.TokenStore
}

func NewLogout(issuer ports.TokenIssuer, store ports.TokenStore) *Logout {
	return &Logout{issuer: issuer, store: store}
}

func (uc *Logout) Execute(ctx context.Context, input LogoutInput) error {
	claims, err := uc.issuer.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return domerrors.ErrInvalidToken
	}
	return uc.store.Revoke(ctx, claims.TokenID, claims.UserID, claims.ExpiresAt)
}
