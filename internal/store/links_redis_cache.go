package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlinks/internal/shortener"
)

// generationTTL keeps a code's generation counter alive well past any
// in-flight read of that code.
const generationTTL = 24 * time.Hour

// fillScript caches a link only if the code's generation is still the one the
// reader saw before it went to the store. Updates and deletes bump the
// generation, so a read that raced with them never caches what it loaded.
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '') ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'code', ARGV[2], 'long_url', ARGV[3], 'owner_id', ARGV[4], 'created_at', ARGV[5])
if tonumber(ARGV[6]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[6])
end
return 1
`)

// LinkCacheRepository wraps a shortener.Repository with Redis caching for code lookups.
// Writes go to the underlying store first; updates and deletes then bump the
// code's generation and evict the cached entry.
type LinkCacheRepository struct {
	store     shortener.Repository
	client    *redis.Client
	prefix    string
	genPrefix string
	ttl       time.Duration
}

// NewLinkCacheRepository creates a new Redis-cached repository decorator.
func NewLinkCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *LinkCacheRepository {
	return &LinkCacheRepository{
		store:     store,
		client:    client,
		prefix:    "link:",
		genPrefix: "link-gen:",
		ttl:       ttl,
	}
}

// Save stores a link in the underlying store and caches it.
func (r *LinkCacheRepository) Save(ctx context.Context, link *shortener.ShortLink) error {
	gen, genErr := r.generation(ctx, link.Code)

	if err := r.store.Save(ctx, link); err != nil {
		return err
	}

	if genErr == nil {
		r.fill(ctx, link, gen)
	}

	return nil
}

// GetByCode retrieves a link by its code, checking cache first.
func (r *LinkCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	gen, genErr := r.generation(ctx, code)

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		r.fill(ctx, link, gen)
	}

	return link, nil
}

func (r *LinkCacheRepository) UpdateURL(ctx context.Context, code shortener.Code, ownerID, longURL string) error {
	if err := r.store.UpdateURL(ctx, code, ownerID, longURL); err != nil {
		return err
	}

	r.invalidate(ctx, code)

	return nil
}

func (r *LinkCacheRepository) Delete(ctx context.Context, code shortener.Code, ownerID string) error {
	if err := r.store.Delete(ctx, code, ownerID); err != nil {
		return err
	}

	r.invalidate(ctx, code)

	return nil
}

// ListByOwner is not cached.
func (r *LinkCacheRepository) ListByOwner(ctx context.Context, ownerID string) ([]shortener.ShortLink, error) {
	return r.store.ListByOwner(ctx, ownerID)
}

func (r *LinkCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	return &shortener.ShortLink{
		Code:      shortener.Code(result["code"]),
		LongURL:   result["long_url"],
		OwnerID:   result["owner_id"],
		CreatedAt: createdAt,
	}, nil
}

// generation returns the code's current generation, "" if it was never bumped.
func (r *LinkCacheRepository) generation(ctx context.Context, code shortener.Code) (string, error) {
	gen, err := r.client.Get(ctx, r.genPrefix+string(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	return gen, err
}

func (r *LinkCacheRepository) fill(ctx context.Context, link *shortener.ShortLink, gen string) {
	keys := []string{r.prefix + string(link.Code), r.genPrefix + string(link.Code)}

	_ = fillScript.Run(ctx, r.client, keys,
		gen,
		string(link.Code),
		link.LongURL,
		link.OwnerID,
		strconv.FormatInt(link.CreatedAt.UnixNano(), 10),
		r.ttl.Milliseconds(),
	).Err()
}

func (r *LinkCacheRepository) invalidate(ctx context.Context, code shortener.Code) {
	genKey := r.genPrefix + string(code)

	_, _ = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, r.prefix+string(code))

		return nil
	})
}

// Compile-time check.
var _ shortener.Repository = (*LinkCacheRepository)(nil)
