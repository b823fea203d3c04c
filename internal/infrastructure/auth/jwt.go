package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bcg0006/plockly-core/internal/application/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenIssuer implements ports.TokenIssuer with RS256. Access tokens are
// pure signature+expiry credentials; refresh tokens additionally carry a
// jti so the revocation set can block them individually.
type TokenIssuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType   string `json:"typ"`
	RotatedFrom string `json:"rotated_from,omitempty"`
}

func NewTokenIssuer(privateKey *rsa.PrivateKey, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		audience:   audience,
	}
}

func (t *TokenIssuer) IssueAccessToken(userID string, expiresInSeconds int64) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: t.registeredClaims(userID, expiresInSeconds),
		TokenType:        tokenTypeAccess,
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.privateKey)
}

func (t *TokenIssuer) IssueRefreshToken(userID, rotatedFrom string, expiresInSeconds int64) (string, string, error) {
	registered := t.registeredClaims(userID, expiresInSeconds)
	registered.ID = uuid.NewString()
	claims := tokenClaims{
		RegisteredClaims: registered,
		TokenType:        tokenTypeRefresh,
		RotatedFrom:      rotatedFrom,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.privateKey)
	if err != nil {
		return "", "", err
	}
	return signed, registered.ID, nil
}

func (t *TokenIssuer) ValidateAccessToken(tokenString string) (string, error) {
	claims, err := t.parseClaims(tokenString)
	if err != nil {
		return "", err
	}
	if claims.TokenType != tokenTypeAccess {
		return "", errors.New("not an access token")
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) ValidateRefreshToken(tokenString string) (*ports.RefreshClaims, error) {
	claims, err := t.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, errors.New("not a refresh token")
	}
	if claims.ID == "" {
		return nil, errors.New("refresh token has no id")
	}
	return &ports.RefreshClaims{
		UserID:      claims.Subject,
		TokenID:     claims.ID,
		RotatedFrom: claims.RotatedFrom,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (t *TokenIssuer) registeredClaims(userID string, expiresInSeconds int64) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Audience:  jwt.ClaimStrings{t.audience},
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expiresInSeconds) * time.Second)),
	}
}

func (t *TokenIssuer) parseClaims(tokenString string) (*tokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.publicKey, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithAudience(t.audience), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
