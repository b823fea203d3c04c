package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

const (
	createUserSQL = `
INSERT INTO users (id, email, password_hash, first_name, last_name, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	userColumns = `id, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

	getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	getUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	updateProfileSQL = `
UPDATE users SET
	email      = COALESCE($2, email),
	first_name = COALESCE($3, first_name),
	last_name  = COALESCE($4, last_name),
	updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns
)

// UserRepository implements ports.UserRepository on Postgres. The unique
// index on lower(email) is the authority on duplicates; violations map
// to ErrEmailTaken so a signup that loses an insert race reports the
// same failure as one that failed the pre-check.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		user.ID.UUID, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.IsActive,
		user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return domerrors.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByEmailSQL, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, getUserByIDSQL, userID.UUID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID domain.UserID, update ports.ProfileUpdate) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, updateProfileSQL,
		userID.UUID, update.Email, update.FirstName, update.LastName))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domerrors.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, domerrors.ErrEmailTaken
	}
	return user, err
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID.UUID, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Ensure UserRepository implements ports.UserRepository.
var _ ports.UserRepository = (*UserRepository)(nil)
