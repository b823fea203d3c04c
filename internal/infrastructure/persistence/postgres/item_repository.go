package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

const (
	createItemSQL = `
INSERT INTO items (id, title, description, owner_id, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	itemColumns = `id, title, description, owner_id, is_active, created_at`

	listItemsSQL = `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC`
	getItemSQL   = `SELECT ` + itemColumns + ` FROM items WHERE id = $1 AND owner_id = $2`

	updateItemSQL = `
UPDATE items SET
	title       = COALESCE($3, title),
	description = COALESCE($4, description)
WHERE id = $1 AND owner_id = $2
RETURNING ` + itemColumns

	deleteItemSQL = `DELETE FROM items WHERE id = $1 AND owner_id = $2`
)

// ItemRepository implements ports.ItemRepository on Postgres. Every
// query carries the owner in the WHERE clause, so a foreign item id is
// indistinguishable from a missing one. Listing order comes from the
// (owner_id, created_at DESC) index, not application-side sorting.
type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) error {
	_, err := r.pool.Exec(ctx, createItemSQL,
		item.ID.UUID, item.Title, item.Description,
		item.OwnerID.UUID, item.IsActive, item.CreatedAt)
	return err
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL, ownerID.UUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) GetByID(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID) (*domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, getItemSQL, itemID.UUID, ownerID.UUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domerrors.ErrItemNotFound
	}
	return item, err
}

func (r *ItemRepository) Update(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID, update ports.ItemUpdate) (*domain.Item, error) {
	item, err := scanItem(r.pool.QueryRow(ctx, updateItemSQL,
		itemID.UUID, ownerID.UUID, update.Title, update.Description))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domerrors.ErrItemNotFound
	}
	return item, err
}

func (r *ItemRepository) Delete(ctx context.Context, ownerID domain.UserID, itemID domain.ItemID) error {
	tag, err := r.pool.Exec(ctx, deleteItemSQL, itemID.UUID, ownerID.UUID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrItemNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var i domain.Item
	err := row.Scan(&i.ID.UUID, &i.Title, &i.Description,
		&i.OwnerID.UUID, &i.IsActive, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Ensure ItemRepository implements ports.ItemRepository.
var _ ports.ItemRepository = (*ItemRepository)(nil)
