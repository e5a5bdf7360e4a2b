package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairchat/internal/domain"
	"pairchat/internal/repository"
)

type IdentityRepo struct {
	pool *pgxpool.Pool
}

func NewIdentityRepo(pool *pgxpool.Pool) *IdentityRepo {
	return &IdentityRepo{pool: pool}
}

func (r *IdentityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO identities (id, username)
		VALUES ($1, $2)`
	_, err := r.pool.Exec(ctx, query, identity.UserID, identity.Username)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		// Unique violation on username: a concurrent registration won.
		return repository.ErrDuplicate
	}
	return err
}

func (r *IdentityRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `
		SELECT id, username
		FROM identities
		WHERE id = $1`
	var identity domain.Identity
	err := r.pool.QueryRow(ctx, query, id).Scan(&identity.UserID, &identity.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &identity, err
}

func (r *IdentityRepo) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	query := `
		SELECT id, username
		FROM identities
		WHERE username = $1`
	var identity domain.Identity
	err := r.pool.QueryRow(ctx, query, username).Scan(&identity.UserID, &identity.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &identity, err
}
