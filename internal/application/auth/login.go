package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// Login verifies credentials and issues a token pair. Unknown email and
// wrong password collapse into the same failure so responses carry no
// enumeration signal.
type Login struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	dummyHash  string
	accessExp  int64
	refreshExp int64
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, accessExp, refreshExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	// Hash of a throwaway value, verified against on the unknown-email
	// branch so that branch costs the same as a wrong password.
	dummyHash, _ := hasher.Hash(uuid.NewString())
	return &Login{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		dummyHash:  dummyHash,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		uc.hasher.Verify(input.Password, uc.dummyHash)
		return nil, domerrors.ErrInvalidCredentials
	}
	if !uc.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domerrors.ErrAccountDisabled
	}
	tokens, err := mintPair(uc.issuer, user.ID.String(), "", uc.accessExp, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}
