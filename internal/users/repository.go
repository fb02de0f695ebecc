package users

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slodi/slodi/internal/platform/httpx"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, auth0_id, email, name, pronouns, permissions, preferences, created_at, updated_at`

// FindByAuth0ID fetches a user by identity-provider subject id.
// Returns httpx.ErrNotFound when no account exists.
func (r *Repository) FindByAuth0ID(ctx context.Context, auth0ID string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth0_id = $1 AND deleted_at IS NULL`, auth0ID)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanUser(row)
}

// Create provisions a new account with the lowest permission level.
// A concurrent first login can race on the auth0_id unique constraint;
// the loser of the race re-reads the winner's row.
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (auth0_id, email, name, permissions)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		nu.Auth0ID, strings.ToLower(nu.Email), nu.Name, string(PermissionViewer))
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return r.FindByAuth0ID(ctx, nu.Auth0ID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the mutable profile fields of an account.
func (r *Repository) UpdateProfile(ctx context.Context, id string, name string, pronouns Pronouns, preferences map[string]any) (*User, error) {
	var prefs []byte
	if preferences != nil {
		data, err := json.Marshal(preferences)
		if err != nil {
			return nil, err
		}
		prefs = data
	}
	row := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = $2, pronouns = NULLIF($3, ''), preferences = $4, updated_at = now()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+userColumns,
		id, name, string(pronouns), prefs)
	return scanUser(row)
}

// List returns all active accounts ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user     User
		pronouns *string
		prefs    []byte
	)
	err := row.Scan(&user.ID, &user.Auth0ID, &user.Email, &user.Name, &pronouns,
		&user.Permission, &prefs, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if pronouns != nil {
		user.Pronouns = Pronouns(*pronouns)
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &user.Preferences); err != nil {
			return nil, err
		}
	}
	return &user, nil
}
