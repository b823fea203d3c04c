package ports

import (
	"context"

	"github.com/bcg0006/plockly-core/internal/domain"
)

// ProfileUpdate carries the mutable profile fields. Nil means "leave as is".
// Identity fields (id, is_active, created_at) are not updatable through
// this interface.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// UserRepository defines persistence for users. Lookups by email expect
// the normalized form; GetByEmail returns (nil, nil) when no user matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, update ProfileUpdate) (*domain.User, error)
}

// ItemUpdate carries the mutable item fields. Nil means "leave as is".
type ItemUpdate struct {
	Title       *string
	Description *string
}

// ItemRepository defines persistence for items. Every operation except
// Create is scoped to the owner; a miss (wrong owner or no such id)
// surfaces as ErrItemNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*domain.Item, error)
	GetByID(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID) (*domain.Item, error)
	Update(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID, update ItemUpdate) (*domain.Item, error)
	Delete(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID) error
}
