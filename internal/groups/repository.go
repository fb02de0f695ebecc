package groups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for group memberships.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindMembership returns the caller's role in a group. The second return
// value is false when no membership row exists.
func (r *Repository) FindMembership(ctx context.Context, userID, groupID uuid.UUID) (Role, bool, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM group_memberships WHERE user_id = $1 AND group_id = $2`,
		userID, groupID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}
