package shortener

import "context"

// Repository defines storage operations for short links.
type Repository interface {
	// Save inserts a new link. It must fail with ErrCodeTaken, without
	// modifying the existing entry, when the code is already in use.
	Save(ctx context.Context, link *ShortLink) error

	// GetByCode returns the link for code or ErrNotFound.
	GetByCode(ctx context.Context, code Code) (*ShortLink, error)

	// UpdateURL replaces the destination of the link identified by code and
	// owned by ownerID. Returns ErrNotFound if no such link exists.
	UpdateURL(ctx context.Context, code Code, ownerID, longURL string) error

	// Delete removes the link identified by code and owned by ownerID.
	// Returns ErrNotFound if no such link exists.
	Delete(ctx context.Context, code Code, ownerID string) error

	// ListByOwner returns the owner's links in insertion order.
	ListByOwner(ctx context.Context, ownerID string) ([]ShortLink, error)
}
