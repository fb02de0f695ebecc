package workspaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slodi/slodi/internal/platform/db"
	"github.com/slodi/slodi/internal/platform/httpx"
)

// Repository provides PostgreSQL backed persistence for workspaces.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindMembership returns the caller's role in a workspace. The second
// return value is false when no membership row exists; that is an
// authoritative "non-member", not an error.
func (r *Repository) FindMembership(ctx context.Context, userID, workspaceID uuid.UUID) (Role, bool, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM workspace_memberships WHERE user_id = $1 AND workspace_id = $2`,
		userID, workspaceID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return role, true, nil
}

// Find fetches a workspace by id. Returns httpx.ErrNotFound when the
// workspace does not exist or is soft-deleted.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	var ws Workspace
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, deleted_at FROM workspaces WHERE id = $1 AND deleted_at IS NULL`,
		id).Scan(&ws.ID, &ws.Name, &ws.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}

// SoftDelete marks a workspace deleted and removes its membership rows
// in one transaction. Returns httpx.ErrNotFound when nothing was updated.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE workspaces SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM workspace_memberships WHERE workspace_id = $1`, id)
		return err
	})
}
