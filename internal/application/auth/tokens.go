package auth

import (
	"github.com/bcg0006/plockly-core/internal/application/ports"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

// TokenPair is an access/refresh token pair bound to one subject.
type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresIn int64
}

// mintPair issues a fresh access+refresh pair. rotatedFrom carries the
// predecessor jti when the pair is minted by a rotation.
func mintPair(issuer ports.TokenIssuer, userID, rotatedFrom string, accessExp, refreshExp int64) (*TokenPair, error) {
	access, err := issuer.IssueAccessToken(userID, accessExp)
	if err != nil {
		return nil, err
	}
	refresh, _, err := issuer.IssueRefreshToken(userID, rotatedFrom, refreshExp)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh, ExpiresIn: accessExp}, nil
}
