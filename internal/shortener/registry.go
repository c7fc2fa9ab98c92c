package shortener

import (
	"context"
	"errors"
	"time"
)

// MaxCodeAttempts bounds how many codes Create tries before giving up.
const MaxCodeAttempts = 10

// Registry manages short links and enforces ownership.
//
// Get, Update and Delete check, in this order, that the code exists, that a
// caller is present and that the caller owns the link. An unknown code is
// reported as ErrNotFound whatever the caller, an anonymous caller gets
// ErrUnauthorized and any other user gets ErrForbidden.
type Registry struct {
	store        Repository
	generateCode CodeGenerator
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store Repository, generator CodeGenerator) *Registry {
	return &Registry{
		store:        store,
		generateCode: generator,
	}
}

// Create stores a new link owned by ownerID under a freshly generated code.
func (r *Registry) Create(ctx context.Context, longURL, ownerID string) (*ShortLink, error) {
	if ownerID == "" {
		return nil, ErrUnauthorized
	}

	destination, err := ValidateURL(longURL)
	if err != nil {
		return nil, err
	}

	for range MaxCodeAttempts {
		link := &ShortLink{
			Code:      Code(r.generateCode()),
			LongURL:   destination,
			OwnerID:   ownerID,
			CreatedAt: time.Now().UTC(),
		}

		err = r.store.Save(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return nil, err
		}
	}

	return nil, ErrExhaustedRetries
}

// Resolve returns the destination for code. It does not check ownership.
func (r *Registry) Resolve(ctx context.Context, code Code) (string, error) {
	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}

	return link.LongURL, nil
}

// Get returns the link if callerID owns it.
func (r *Registry) Get(ctx context.Context, code Code, callerID string) (*ShortLink, error) {
	return r.authorize(ctx, code, callerID)
}

// Update replaces the destination of a link owned by callerID and returns the
// destination as stored.
func (r *Registry) Update(ctx context.Context, code Code, newLongURL, callerID string) (string, error) {
	if _, err := r.authorize(ctx, code, callerID); err != nil {
		return "", err
	}

	destination, err := ValidateURL(newLongURL)
	if err != nil {
		return "", err
	}

	if err := r.store.UpdateURL(ctx, code, callerID, destination); err != nil {
		return "", err
	}

	return destination, nil
}

// Delete removes a link owned by callerID.
func (r *Registry) Delete(ctx context.Context, code Code, callerID string) error {
	if _, err := r.authorize(ctx, code, callerID); err != nil {
		return err
	}

	return r.store.Delete(ctx, code, callerID)
}

// ListForOwner returns the links owned by ownerID. The result is never nil.
func (r *Registry) ListForOwner(ctx context.Context, ownerID string) ([]ShortLink, error) {
	if ownerID == "" {
		return []ShortLink{}, nil
	}

	links, err := r.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if links == nil {
		links = []ShortLink{}
	}

	return links, nil
}

func (r *Registry) authorize(ctx context.Context, code Code, callerID string) (*ShortLink, error) {
	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if callerID == "" {
		return nil, ErrUnauthorized
	}

	if !link.OwnedBy(callerID) {
		return nil, ErrForbidden
	}

	return link, nil
}
