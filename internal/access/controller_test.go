package access_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/serroba/shortlinks/internal/access"
	"github.com/serroba/shortlinks/internal/account"
	"github.com/serroba/shortlinks/internal/events"
	"github.com/serroba/shortlinks/internal/session"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// forgetfulUsers lets a test drop a user behind a live session and counts id lookups.
type forgetfulUsers struct {
	*store.UserMemoryStore
	mu        sync.Mutex
	forgotten map[string]bool
	lookups   int
}

func (f *forgetfulUsers) GetByID(ctx context.Context, id string) (*account.User, error) {
	f.mu.Lock()
	gone := f.forgotten[id]
	f.lookups++
	f.mu.Unlock()

	if gone {
		return nil, account.ErrNotFound
	}

	return f.UserMemoryStore.GetByID(ctx, id)
}

func (f *forgetfulUsers) forget(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.forgotten[id] = true
}

type fixture struct {
	controller *access.Controller
	users      *forgetfulUsers
	sessions   *store.SessionMemoryStore
}

func newFixture(t *testing.T, publishers *events.Publishers) *fixture {
	t.Helper()

	generator, err := shortener.NewCodeGenerator()
	require.NoError(t, err)

	users := &forgetfulUsers{UserMemoryStore: store.NewUserMemoryStore(), forgotten: map[string]bool{}}
	sessions := store.NewSessionMemoryStore()

	controller := access.NewController(
		account.NewService(users),
		session.NewAuthority(sessions, time.Hour),
		shortener.NewRegistry(store.NewLinkMemoryStore(), generator),
		publishers,
		zap.NewNop(),
	)

	return &fixture{controller: controller, users: users, sessions: sessions}
}

func (f *fixture) signUp(t *testing.T, email string) session.Token {
	t.Helper()

	_, s, err := f.controller.SignUp(context.Background(), email, "secret")
	require.NoError(t, err)

	return s.Token
}

func TestController_AliceScenario(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.controller.Register(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)

	s, err := f.controller.Login(ctx, "alice@x.com", "pw1")
	require.NoError(t, err)

	link, err := f.controller.CreateLink(ctx, s.Token, "https://example.org")
	require.NoError(t, err)
	assert.Len(t, string(link.Code), shortener.CodeLength)

	longURL, err := f.controller.ResolveLink(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", longURL)

	links, err := f.controller.ListLinks(ctx, s.Token)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.Code, links[0].Code)

	require.NoError(t, f.controller.Logout(ctx, s.Token))

	_, err = f.controller.GetLink(ctx, s.Token, link.Code)
	require.ErrorIs(t, err, shortener.ErrUnauthorized)

	_, err = f.controller.GetLink(ctx, "", link.Code)
	require.ErrorIs(t, err, shortener.ErrUnauthorized)
}

func TestController_DeleteByOtherUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := f.signUp(t, "a@x.com")
	b := f.signUp(t, "b@x.com")

	link, err := f.controller.CreateLink(ctx, a, "https://a.example")
	require.NoError(t, err)

	require.ErrorIs(t, f.controller.DeleteLink(ctx, b, link.Code), shortener.ErrForbidden)

	longURL, err := f.controller.ResolveLink(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", longURL)

	require.NoError(t, f.controller.DeleteLink(ctx, a, link.Code))

	_, err = f.controller.ResolveLink(ctx, link.Code)
	require.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestController_CheckOrder(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	owner := f.signUp(t, "owner@x.com")
	other := f.signUp(t, "other@x.com")

	link, err := f.controller.CreateLink(ctx, owner, "https://example.com")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token session.Token
		code  shortener.Code
		want  error
	}{
		{"unknown code without session", "", "zzzzzz", shortener.ErrNotFound},
		{"unknown code with session", other, "zzzzzz", shortener.ErrNotFound},
		{"anonymous caller", "", link.Code, shortener.ErrUnauthorized},
		{"garbage token", "not-a-token", link.Code, shortener.ErrUnauthorized},
		{"non-owner", other, link.Code, shortener.ErrForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.controller.GetLink(ctx, tc.token, tc.code)
			require.ErrorIs(t, err, tc.want)

			err = f.controller.UpdateLink(ctx, tc.token, tc.code, "https://changed.example")
			require.ErrorIs(t, err, tc.want)

			err = f.controller.DeleteLink(ctx, tc.token, tc.code)
			require.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("owner still sees the original destination", func(t *testing.T) {
		got, err := f.controller.GetLink(ctx, owner, link.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", got.LongURL)
	})
}

func TestController_UpdateLink(t *testing.T) {
	t.Run("owner can change the destination", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		token := f.signUp(t, "a@x.com")

		link, err := f.controller.CreateLink(ctx, token, "https://old.example")
		require.NoError(t, err)

		require.NoError(t, f.controller.UpdateLink(ctx, token, link.Code, "https://new.example"))

		longURL, err := f.controller.ResolveLink(ctx, link.Code)
		require.NoError(t, err)
		assert.Equal(t, "https://new.example", longURL)
	})

	t.Run("rejects an invalid destination", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		token := f.signUp(t, "a@x.com")

		link, err := f.controller.CreateLink(ctx, token, "https://old.example")
		require.NoError(t, err)

		err = f.controller.UpdateLink(ctx, token, link.Code, "ftp://nope")
		require.ErrorIs(t, err, shortener.ErrInvalidURL)
	})
}

func TestController_ListLinks(t *testing.T) {
	t.Run("empty for anonymous callers", func(t *testing.T) {
		f := newFixture(t, nil)

		links, err := f.controller.ListLinks(context.Background(), "")

		require.NoError(t, err)
		assert.NotNil(t, links)
		assert.Empty(t, links)
	})

	t.Run("only returns the caller's links in creation order", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		a := f.signUp(t, "a@x.com")
		b := f.signUp(t, "b@x.com")

		first, err := f.controller.CreateLink(ctx, a, "https://one.example")
		require.NoError(t, err)
		_, err = f.controller.CreateLink(ctx, b, "https://other.example")
		require.NoError(t, err)
		second, err := f.controller.CreateLink(ctx, a, "https://two.example")
		require.NoError(t, err)

		links, err := f.controller.ListLinks(ctx, a)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, first.Code, links[0].Code)
		assert.Equal(t, second.Code, links[1].Code)
	})
}

func TestController_OwnLinks(t *testing.T) {
	t.Run("returns the caller with one user lookup", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		token := f.signUp(t, "own@x.com")

		_, err := f.controller.CreateLink(ctx, token, "https://one.example")
		require.NoError(t, err)

		f.users.mu.Lock()
		f.users.lookups = 0
		f.users.mu.Unlock()

		user, links, err := f.controller.OwnLinks(ctx, token)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "own@x.com", user.Email)
		assert.Len(t, links, 1)
		assert.Equal(t, 1, f.users.lookups)
	})

	t.Run("nil user and empty links for anonymous callers", func(t *testing.T) {
		f := newFixture(t, nil)

		user, links, err := f.controller.OwnLinks(context.Background(), "")

		require.NoError(t, err)
		assert.Nil(t, user)
		assert.NotNil(t, links)
		assert.Empty(t, links)
	})
}

func TestController_SelectToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	live := f.signUp(t, "select@x.com")
	other := f.signUp(t, "other@x.com")

	stale, err := session.GenerateToken()
	require.NoError(t, err)

	cases := []struct {
		name       string
		candidates []session.Token
		want       session.Token
	}{
		{"none", nil, ""},
		{"lone token is kept unchecked", []session.Token{stale}, stale},
		{"first live token wins", []session.Token{live, other}, live},
		{"stale token is skipped", []session.Token{stale, live}, live},
		{"no live token", []session.Token{stale, "garbage"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.controller.SelectToken(ctx, tc.candidates...)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestController_Credentials(t *testing.T) {
	t.Run("register then login resolves to the same user", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		user, err := f.controller.Register(ctx, "carol@x.com", "hunter2")
		require.NoError(t, err)

		s, err := f.controller.Login(ctx, "carol@x.com", "hunter2")
		require.NoError(t, err)

		current, err := f.controller.CurrentUser(ctx, s.Token)
		require.NoError(t, err)
		require.NotNil(t, current)
		assert.Equal(t, user.ID, current.ID)
	})

	t.Run("duplicate email is rejected whatever the password", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		_, err := f.controller.Register(ctx, "dup@x.com", "one")
		require.NoError(t, err)

		_, err = f.controller.Register(ctx, "dup@x.com", "two")
		require.ErrorIs(t, err, account.ErrEmailTaken)

		_, _, err = f.controller.SignUp(ctx, "DUP@x.com", "three")
		require.ErrorIs(t, err, account.ErrEmailTaken)
	})

	t.Run("bad credentials collapse to one error", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()

		_, err := f.controller.Register(ctx, "dave@x.com", "right")
		require.NoError(t, err)

		_, err = f.controller.Login(ctx, "dave@x.com", "wrong")
		require.ErrorIs(t, err, account.ErrInvalidCredentials)

		_, err = f.controller.Login(ctx, "nobody@x.com", "right")
		require.ErrorIs(t, err, account.ErrInvalidCredentials)
	})

	t.Run("current user is nil without a session", func(t *testing.T) {
		f := newFixture(t, nil)

		user, err := f.controller.CurrentUser(context.Background(), "")

		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		f := newFixture(t, nil)
		ctx := context.Background()
		token := f.signUp(t, "e@x.com")

		require.NoError(t, f.controller.Logout(ctx, token))
		require.NoError(t, f.controller.Logout(ctx, token))
		require.NoError(t, f.controller.Logout(ctx, ""))
	})
}

func TestController_SessionOfMissingUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	user, s, err := f.controller.SignUp(ctx, "ghost@x.com", "boo")
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.Len())

	f.users.forget(user.ID)

	current, err := f.controller.CurrentUser(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Equal(t, 0, f.sessions.Len())

	_, err = f.controller.CreateLink(ctx, s.Token, "https://example.com")
	require.ErrorIs(t, err, shortener.ErrUnauthorized)
}

func TestController_Events(t *testing.T) {
	t.Run("publishes lifecycle events", func(t *testing.T) {
		var (
			mu     sync.Mutex
			topics []string
		)

		record := func(topic string) {
			mu.Lock()
			defer mu.Unlock()

			topics = append(topics, topic)
		}

		pubs := &events.Publishers{
			UserRegistered: func(_ context.Context, _ *events.UserRegisteredEvent) error {
				record(events.TopicUserRegistered)

				return nil
			},
			LinkCreated: func(_ context.Context, e *events.LinkCreatedEvent) error {
				record(events.TopicLinkCreated)
				assert.Equal(t, "203.0.113.7", e.ClientIP)

				return nil
			},
			LinkUpdated: func(_ context.Context, e *events.LinkUpdatedEvent) error {
				record(events.TopicLinkUpdated)
				assert.Equal(t, "https://new.example", e.LongURL)

				return nil
			},
			LinkDeleted: func(_ context.Context, _ *events.LinkDeletedEvent) error {
				record(events.TopicLinkDeleted)

				return nil
			},
			LinkAccessed: func(_ context.Context, e *events.LinkAccessedEvent) error {
				record(events.TopicLinkAccessed)
				assert.Equal(t, "https://ref.example", e.Referrer)

				return nil
			},
		}

		f := newFixture(t, pubs)
		ctx := access.ContextWithRequestMeta(context.Background(), access.RequestMeta{
			ClientIP: "203.0.113.7",
			Referrer: "https://ref.example",
		})

		token := f.signUp(t, "events@x.com")
		link, err := f.controller.CreateLink(ctx, token, "https://old.example")
		require.NoError(t, err)
		require.NoError(t, f.controller.UpdateLink(ctx, token, link.Code, " https://new.example "))
		_, err = f.controller.ResolveLink(ctx, link.Code)
		require.NoError(t, err)
		require.NoError(t, f.controller.DeleteLink(ctx, token, link.Code))

		assert.Equal(t, []string{
			events.TopicUserRegistered,
			events.TopicLinkCreated,
			events.TopicLinkUpdated,
			events.TopicLinkAccessed,
			events.TopicLinkDeleted,
		}, topics)
	})

	t.Run("publish failures do not fail the operation", func(t *testing.T) {
		pubs := events.Discard()
		pubs.LinkCreated = func(context.Context, *events.LinkCreatedEvent) error {
			return errors.New("broker down")
		}

		f := newFixture(t, pubs)
		token := f.signUp(t, "broker@x.com")

		link, err := f.controller.CreateLink(context.Background(), token, "https://example.com")

		require.NoError(t, err)
		assert.NotEmpty(t, link.Code)
	})
}
