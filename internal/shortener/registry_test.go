package shortener_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns a generator that yields codes in order, repeating the last one.
func sequence(codes ...string) shortener.CodeGenerator {
	var (
		mu sync.Mutex
		i  int
	)

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		code := codes[min(i, len(codes)-1)]
		i++

		return code
	}
}

type failingRepository struct {
	*store.LinkMemoryStore
	err error
}

func (f *failingRepository) Save(_ context.Context, _ *shortener.ShortLink) error {
	return f.err
}

func newRegistry(t *testing.T) *shortener.Registry {
	t.Helper()

	generator, err := shortener.NewCodeGenerator()
	require.NoError(t, err)

	return shortener.NewRegistry(store.NewLinkMemoryStore(), generator)
}

func TestRegistry_Create(t *testing.T) {
	t.Run("round trips through get", func(t *testing.T) {
		registry := newRegistry(t)
		ctx := context.Background()

		link, err := registry.Create(ctx, "https://example.com/a", "user-1")
		require.NoError(t, err)

		got, err := registry.Get(ctx, link.Code, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", got.LongURL)
		assert.Equal(t, "user-1", got.OwnerID)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("requires an owner", func(t *testing.T) {
		registry := newRegistry(t)

		_, err := registry.Create(context.Background(), "https://example.com", "")

		require.ErrorIs(t, err, shortener.ErrUnauthorized)
	})

	t.Run("rejects invalid urls", func(t *testing.T) {
		registry := newRegistry(t)

		_, err := registry.Create(context.Background(), "not a url", "user-1")

		require.ErrorIs(t, err, shortener.ErrInvalidURL)
	})

	t.Run("retries on collision", func(t *testing.T) {
		registry := shortener.NewRegistry(store.NewLinkMemoryStore(), sequence("AAAAAA", "AAAAAA", "BBBBBB"))
		ctx := context.Background()

		first, err := registry.Create(ctx, "https://one.example", "user-1")
		require.NoError(t, err)

		second, err := registry.Create(ctx, "https://two.example", "user-1")
		require.NoError(t, err)

		assert.Equal(t, shortener.Code("AAAAAA"), first.Code)
		assert.Equal(t, shortener.Code("BBBBBB"), second.Code)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		registry := shortener.NewRegistry(store.NewLinkMemoryStore(), sequence("AAAAAA"))
		ctx := context.Background()

		_, err := registry.Create(ctx, "https://one.example", "user-1")
		require.NoError(t, err)

		_, err = registry.Create(ctx, "https://two.example", "user-1")
		require.ErrorIs(t, err, shortener.ErrExhaustedRetries)
	})

	t.Run("returns repository errors", func(t *testing.T) {
		boom := errors.New("disk on fire")
		repo := &failingRepository{LinkMemoryStore: store.NewLinkMemoryStore(), err: boom}
		registry := shortener.NewRegistry(repo, sequence("AAAAAA"))

		_, err := registry.Create(context.Background(), "https://example.com", "user-1")

		require.ErrorIs(t, err, boom)
	})

	t.Run("codes stay unique under concurrent creates", func(t *testing.T) {
		registry := newRegistry(t)
		ctx := context.Background()

		const n = 1000

		codes := make([]shortener.Code, n)

		var wg sync.WaitGroup

		for i := range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				link, err := registry.Create(ctx, "https://example.com", "user-1")
				if assert.NoError(t, err) {
					codes[i] = link.Code
				}
			}()
		}

		wg.Wait()

		seen := make(map[shortener.Code]bool, n)
		for _, code := range codes {
			assert.Len(t, string(code), shortener.CodeLength)
			assert.False(t, seen[code], "duplicate code %s", code)
			seen[code] = true
		}

		links, err := registry.ListForOwner(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, links, n)
	})
}

func TestRegistry_Resolve(t *testing.T) {
	registry := newRegistry(t)
	ctx := context.Background()

	link, err := registry.Create(ctx, "https://example.com/x", "user-1")
	require.NoError(t, err)

	t.Run("needs no caller", func(t *testing.T) {
		longURL, err := registry.Resolve(ctx, link.Code)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/x", longURL)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := registry.Resolve(ctx, "nope00")

		require.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestRegistry_Ownership(t *testing.T) {
	registry := newRegistry(t)
	ctx := context.Background()

	link, err := registry.Create(ctx, "https://example.com", "owner")
	require.NoError(t, err)

	cases := []struct {
		name   string
		code   shortener.Code
		caller string
		want   error
	}{
		{"unknown code beats anonymous", "zzzzzz", "", shortener.ErrNotFound},
		{"unknown code beats ownership", "zzzzzz", "owner", shortener.ErrNotFound},
		{"anonymous", link.Code, "", shortener.ErrUnauthorized},
		{"non-owner", link.Code, "intruder", shortener.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := registry.Get(ctx, tc.code, tc.caller)
			require.ErrorIs(t, err, tc.want)

			_, err = registry.Update(ctx, tc.code, "https://x.example", tc.caller)
			require.ErrorIs(t, err, tc.want)

			require.ErrorIs(t, registry.Delete(ctx, tc.code, tc.caller), tc.want)
		})
	}

	t.Run("ownership is checked before the new url", func(t *testing.T) {
		_, err := registry.Update(ctx, link.Code, "::bad::", "intruder")

		require.ErrorIs(t, err, shortener.ErrForbidden)
	})
}

func TestRegistry_UpdateAndDelete(t *testing.T) {
	t.Run("owner updates the destination", func(t *testing.T) {
		registry := newRegistry(t)
		ctx := context.Background()

		link, err := registry.Create(ctx, "https://old.example", "owner")
		require.NoError(t, err)

		stored, err := registry.Update(ctx, link.Code, "  https://new.example ", "owner")
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", stored)

		longURL, err := registry.Resolve(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", longURL)
	})

	t.Run("owner deletes the link", func(t *testing.T) {
		registry := newRegistry(t)
		ctx := context.Background()

		link, err := registry.Create(ctx, "https://example.com", "owner")
		require.NoError(t, err)

		require.NoError(t, registry.Delete(ctx, link.Code, "owner"))

		_, err = registry.Resolve(ctx, link.Code)
		require.ErrorIs(t, err, shortener.ErrNotFound)

		require.ErrorIs(t, registry.Delete(ctx, link.Code, "owner"), shortener.ErrNotFound)
	})
}

func TestRegistry_ListForOwner(t *testing.T) {
	t.Run("never returns nil", func(t *testing.T) {
		registry := newRegistry(t)

		for _, owner := range []string{"", "nobody"} {
			links, err := registry.ListForOwner(context.Background(), owner)

			require.NoError(t, err)
			assert.NotNil(t, links)
			assert.Empty(t, links)
		}
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		registry := shortener.NewRegistry(store.NewLinkMemoryStore(), sequence("CCCCCC", "AAAAAA", "BBBBBB"))
		ctx := context.Background()

		for _, u := range []string{"https://c.example", "https://a.example", "https://b.example"} {
			_, err := registry.Create(ctx, u, "owner")
			require.NoError(t, err)
		}

		links, err := registry.ListForOwner(ctx, "owner")
		require.NoError(t, err)
		require.Len(t, links, 3)
		assert.Equal(t, shortener.Code("CCCCCC"), links[0].Code)
		assert.Equal(t, shortener.Code("AAAAAA"), links[1].Code)
		assert.Equal(t, shortener.Code("BBBBBB"), links[2].Code)
	})
}
