package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemID is a value object for item identity.
type ItemID struct{ uuid.UUID }

// NewItemID creates a new ItemID from uuid.
func NewItemID(id uuid.UUID) ItemID { return ItemID{UUID: id} }

// String returns the canonical string form.
func (i ItemID) String() string { return i.UUID.String() }

// Item is a user-owned resource. The owner is assigned server-side at
// creation and every read and mutation is scoped to it.
type Item struct {
	ID          ItemID
	Title       string
	Description string
	OwnerID     UserID
	IsActive    bool
	CreatedAt   time.Time
}
