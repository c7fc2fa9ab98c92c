package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/account"
)

const uniqueViolation = "23505"

// UserPostgresStore is a PostgreSQL implementation of account.Repository.
type UserPostgresStore struct {
	pool *pgxpool.Pool
}

// NewUserPostgresStore creates a new PostgreSQL-backed user store.
func NewUserPostgresStore(pool *pgxpool.Pool) *UserPostgresStore {
	return &UserPostgresStore{pool: pool}
}

func (p *UserPostgresStore) Create(ctx context.Context, user *account.User) error {
	query := `
		INSERT INTO users (id, email, email_key, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		account.EmailKey(user.Email),
		user.PasswordHash,
		user.CreatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return account.ErrEmailTaken
	}

	return err
}

func (p *UserPostgresStore) GetByID(ctx context.Context, id string) (*account.User, error) {
	return p.getOne(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (p *UserPostgresStore) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return p.getOne(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE email_key = $1
	`, account.EmailKey(email))
}

func (p *UserPostgresStore) getOne(ctx context.Context, query string, arg string) (*account.User, error) {
	var user account.User

	err := p.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, err
	}

	return &user, nil
}

// Compile-time check.
var _ account.Repository = (*UserPostgresStore)(nil)
