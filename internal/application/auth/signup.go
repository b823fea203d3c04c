package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email. The result is the
// identity stored and compared everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type SignupInput struct {
	Email    string
	Password string
}

type SignupResult struct {
	User   *domain.User
	Tokens *TokenPair
}

// Signup creates a user and issues the initial token pair.
type Signup struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	policy     ports.PasswordPolicy
	issuer     ports.TokenIssuer
	accessExp  int64
	refreshExp int64
}

func NewSignup(users ports.UserRepository, hasher ports.PasswordHasher, policy ports.PasswordPolicy, issuer ports.TokenIssuer, accessExp, refreshExp int64) *Signup {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Signup{
		users:      users,
		hasher:     hasher,
		policy:     policy,
		issuer:     issuer,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Signup) Execute(ctx context.Context, input SignupInput) (*SignupResult, error) {
	email := NormalizeEmail(input.Email)
	if !emailRegex.MatchString(email) {
		return nil, domerrors.ErrInvalidCredentials
	}
	if err := uc.policy.Validate(input.Password, email); err != nil {
		return nil, err
	}
	// The unique index is the real guard against duplicates; Create maps
	// a constraint violation to ErrEmailTaken even when two signups race
	// past this point.
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	tokens, err := mintPair(uc.issuer, user.ID.String(), "", uc.accessExp, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &SignupResult{User: user, Tokens: tokens}, nil
}
