package auth

import (
	"context"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	Tokens *TokenPair
}

// Refresh exchanges a live refresh token for a new pair, rotating on
// every use: the presented token's jti joins the revocation set before
// the successor is returned, so replaying it fails as revoked.
type Refresh struct {
	issuer     ports.TokenIssuer
	store      ports.TokenStore
	accessExp  int64
	refreshExp int64
}

func NewRefresh(issuer ports.TokenIssuer, store ports.TokenStore, accessExp, refreshExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Refresh{
		issuer:     issuer,
		store:      store,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	claims, err := uc.issuer.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	revoked, err := uc.store.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domerrors.ErrTokenRevoked
	}
	if err := uc.store.Revoke(ctx, claims.TokenID, claims.UserID, claims.ExpiresAt); err != nil {
		return nil, err
	}
	tokens, err := mintPair(uc.issuer, claims.UserID, claims.TokenID, uc.accessExp, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{Tokens: tokens}, nil
}
