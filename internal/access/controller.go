// Package access resolves callers from session tokens and authorizes every
// account and link operation on their behalf.
package access

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortlinks/internal/account"
	"github.com/serroba/shortlinks/internal/events"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/session"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// Controller is stateless per call. Each method resolves the token, if any,
// and delegates with the resulting caller id.
type Controller struct {
	accounts *account.Service
	sessions *session.Authority
	links    *shortener.Registry
	events   *events.Publishers
	logger   *zap.Logger
	now      func() time.Time
}

// NewController creates a Controller. A nil publishers value discards events.
func NewController(
	accounts *account.Service,
	sessions *session.Authority,
	links *shortener.Registry,
	publishers *events.Publishers,
	logger *zap.Logger,
) *Controller {
	if publishers == nil {
		publishers = events.Discard()
	}

	return &Controller{
		accounts: accounts,
		sessions: sessions,
		links:    links,
		events:   publishers,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account without opening a session.
func (c *Controller) Register(ctx context.Context, email, password string) (*account.User, error) {
	user, err := c.accounts.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}

	publish(ctx, c.logger, events.TopicUserRegistered, c.events.UserRegistered, &events.UserRegisteredEvent{
		UserID:       user.ID,
		Email:        user.Email,
		RegisteredAt: user.CreatedAt,
	})

	return user, nil
}

// SignUp registers an account and logs it in.
func (c *Controller) SignUp(ctx context.Context, email, password string) (*account.User, *session.Session, error) {
	user, err := c.Register(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	s, err := c.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, s, nil
}

// Login checks credentials and opens a session.
func (c *Controller) Login(ctx context.Context, email, password string) (*session.Session, error) {
	user, err := c.accounts.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	return c.sessions.Create(ctx, user.ID)
}

// Logout ends the session. Unknown tokens are ignored.
func (c *Controller) Logout(ctx context.Context, token session.Token) error {
	return c.sessions.Destroy(ctx, token)
}

// SelectToken returns the first candidate backed by a live session, or "" if
// none is. A lone candidate is returned without a lookup.
func (c *Controller) SelectToken(ctx context.Context, candidates ...session.Token) (session.Token, error) {
	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return candidates[0], nil
	}

	for _, token := range candidates {
		_, err := c.sessions.Resolve(ctx, token)
		if errors.Is(err, session.ErrNoSession) {
			continue
		}

		if err != nil {
			return "", err
		}

		return token, nil
	}

	return "", nil
}

// CurrentUser returns the user behind token, or nil when there is none.
func (c *Controller) CurrentUser(ctx context.Context, token session.Token) (*account.User, error) {
	return c.caller(ctx, token)
}

// CreateLink shortens longURL on behalf of the caller.
func (c *Controller) CreateLink(ctx context.Context, token session.Token, longURL string) (*shortener.ShortLink, error) {
	caller, err := c.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	userID := idOf(caller)

	link, err := c.links.Create(ctx, longURL, userID)
	if err != nil {
		return nil, err
	}

	meta := RequestMetaFromContext(ctx)
	publish(ctx, c.logger, events.TopicLinkCreated, c.events.LinkCreated, &events.LinkCreatedEvent{
		Code:      string(link.Code),
		LongURL:   link.LongURL,
		OwnerID:   link.OwnerID,
		CreatedAt: link.CreatedAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	return link, nil
}

// ListLinks returns the caller's links, or an empty slice for anonymous callers.
func (c *Controller) ListLinks(ctx context.Context, token session.Token) ([]shortener.ShortLink, error) {
	_, links, err := c.OwnLinks(ctx, token)

	return links, err
}

// OwnLinks returns the caller together with their links. The user is nil and
// the slice empty for anonymous callers.
func (c *Controller) OwnLinks(ctx context.Context, token session.Token) (*account.User, []shortener.ShortLink, error) {
	user, err := c.caller(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	links, err := c.links.ListForOwner(ctx, idOf(user))
	if err != nil {
		return nil, nil, err
	}

	return user, links, nil
}

// GetLink returns a link owned by the caller.
func (c *Controller) GetLink(ctx context.Context, token session.Token, code shortener.Code) (*shortener.ShortLink, error) {
	caller, err := c.caller(ctx, token)
	if err != nil {
		return nil, err
	}

	userID := idOf(caller)

	return c.links.Get(ctx, code, userID)
}

// UpdateLink points a link owned by the caller at newLongURL.
func (c *Controller) UpdateLink(ctx context.Context, token session.Token, code shortener.Code, newLongURL string) error {
	caller, err := c.caller(ctx, token)
	if err != nil {
		return err
	}

	userID := idOf(caller)

	longURL, err := c.links.Update(ctx, code, newLongURL, userID)
	if err != nil {
		return err
	}

	publish(ctx, c.logger, events.TopicLinkUpdated, c.events.LinkUpdated, &events.LinkUpdatedEvent{
		Code:      string(code),
		LongURL:   longURL,
		OwnerID:   userID,
		UpdatedAt: c.now().UTC(),
	})

	return nil
}

// DeleteLink removes a link owned by the caller.
func (c *Controller) DeleteLink(ctx context.Context, token session.Token, code shortener.Code) error {
	caller, err := c.caller(ctx, token)
	if err != nil {
		return err
	}

	userID := idOf(caller)

	if err := c.links.Delete(ctx, code, userID); err != nil {
		return err
	}

	publish(ctx, c.logger, events.TopicLinkDeleted, c.events.LinkDeleted, &events.LinkDeletedEvent{
		Code:      string(code),
		OwnerID:   userID,
		DeletedAt: c.now().UTC(),
	})

	return nil
}

// ResolveLink returns the destination of code. No session is needed.
func (c *Controller) ResolveLink(ctx context.Context, code shortener.Code) (string, error) {
	longURL, err := c.links.Resolve(ctx, code)
	if err != nil {
		return "", err
	}

	meta := RequestMetaFromContext(ctx)
	publish(ctx, c.logger, events.TopicLinkAccessed, c.events.LinkAccessed, &events.LinkAccessedEvent{
		Code:       string(code),
		AccessedAt: c.now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	})

	return longURL, nil
}

// caller returns the user behind token, or nil for anonymous callers.
// A session whose user no longer exists is destroyed and treated as absent.
func (c *Controller) caller(ctx context.Context, token session.Token) (*account.User, error) {
	if token == "" {
		return nil, nil
	}

	id, err := c.sessions.Resolve(ctx, token)
	if errors.Is(err, session.ErrNoSession) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	user, err := c.accounts.Get(ctx, id)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, account.ErrNotFound) {
		return nil, err
	}

	c.logger.Warn("dropping session of unknown user", zap.String("userId", id))

	if err := c.sessions.Destroy(ctx, token); err != nil {
		return nil, err
	}

	return nil, nil
}

func idOf(user *account.User) string {
	if user == nil {
		return ""
	}

	return user.ID
}

func publish[T any](ctx context.Context, logger *zap.Logger, topic string, fn messaging.Publish[T], event *T) {
	if err := fn(ctx, event); err != nil {
		logger.Warn("failed to publish event",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
