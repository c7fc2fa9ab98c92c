// Package events defines the lifecycle events emitted by the shortener.
package events

import "time"

const (
	TopicUserRegistered = "user.registered"
	TopicLinkCreated    = "link.created"
	TopicLinkUpdated    = "link.updated"
	TopicLinkDeleted    = "link.deleted"
	TopicLinkAccessed   = "link.accessed"
)

// Topics lists every topic in publication order.
var Topics = []string{
	TopicUserRegistered,
	TopicLinkCreated,
	TopicLinkUpdated,
	TopicLinkDeleted,
	TopicLinkAccessed,
}

// UserRegisteredEvent is emitted after a new account is stored.
type UserRegisteredEvent struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// LinkCreatedEvent is emitted when a short link is created.
type LinkCreatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// LinkUpdatedEvent is emitted when an owner changes a link destination.
type LinkUpdatedEvent struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	OwnerID   string    `json:"ownerId"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LinkDeletedEvent is emitted when an owner removes a link.
type LinkDeletedEvent struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId"`
	DeletedAt time.Time `json:"deletedAt"`
}

// LinkAccessedEvent is emitted on every successful redirect.
type LinkAccessedEvent struct {
	Code       string    `json:"code"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientIP   string    `json:"clientIp,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
}
