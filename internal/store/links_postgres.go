package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlinks/internal/shortener"
)

// LinkPostgresStore is a PostgreSQL implementation of shortener.Repository.
type LinkPostgresStore struct {
	pool *pgxpool.Pool
}

// NewLinkPostgresStore creates a new PostgreSQL-backed link store.
func NewLinkPostgresStore(pool *pgxpool.Pool) *LinkPostgresStore {
	return &LinkPostgresStore{pool: pool}
}

func (p *LinkPostgresStore) Save(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (code, long_url, owner_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query,
		string(link.Code),
		link.LongURL,
		link.OwnerID,
		link.CreatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrCodeTaken
	}

	return nil
}

func (p *LinkPostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := `
		SELECT code, long_url, owner_id, created_at
		FROM short_links
		WHERE code = $1
	`

	var link shortener.ShortLink

	err := p.pool.QueryRow(ctx, query, string(code)).Scan(
		&link.Code,
		&link.LongURL,
		&link.OwnerID,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func (p *LinkPostgresStore) UpdateURL(ctx context.Context, code shortener.Code, ownerID, longURL string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE short_links SET long_url = $3 WHERE code = $1 AND owner_id = $2`,
		string(code), ownerID, longURL,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *LinkPostgresStore) Delete(ctx context.Context, code shortener.Code, ownerID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM short_links WHERE code = $1 AND owner_id = $2`,
		string(code), ownerID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func (p *LinkPostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]shortener.ShortLink, error) {
	query := `
		SELECT code, long_url, owner_id, created_at
		FROM short_links
		WHERE owner_id = $1
		ORDER BY seq
	`

	rows, err := p.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	links, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shortener.ShortLink, error) {
		var link shortener.ShortLink
		err := row.Scan(&link.Code, &link.LongURL, &link.OwnerID, &link.CreatedAt)

		return link, err
	})
	if err != nil {
		return nil, err
	}

	return links, nil
}

// Ping checks database connectivity.
func (p *LinkPostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Compile-time check.
var _ shortener.Repository = (*LinkPostgresStore)(nil)
