package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlinks/internal/messaging"
)

// Publishers bundles one typed publish function per topic.
type Publishers struct {
	UserRegistered messaging.Publish[UserRegisteredEvent]
	LinkCreated    messaging.Publish[LinkCreatedEvent]
	LinkUpdated    messaging.Publish[LinkUpdatedEvent]
	LinkDeleted    messaging.Publish[LinkDeletedEvent]
	LinkAccessed   messaging.Publish[LinkAccessedEvent]
}

// NewPublishers binds every topic to the given publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		UserRegistered: messaging.NewPublishFunc[UserRegisteredEvent](publisher, TopicUserRegistered),
		LinkCreated:    messaging.NewPublishFunc[LinkCreatedEvent](publisher, TopicLinkCreated),
		LinkUpdated:    messaging.NewPublishFunc[LinkUpdatedEvent](publisher, TopicLinkUpdated),
		LinkDeleted:    messaging.NewPublishFunc[LinkDeletedEvent](publisher, TopicLinkDeleted),
		LinkAccessed:   messaging.NewPublishFunc[LinkAccessedEvent](publisher, TopicLinkAccessed),
	}
}

// Discard returns publishers that drop every event.
func Discard() *Publishers {
	return &Publishers{
		UserRegistered: messaging.Discard[UserRegisteredEvent](),
		LinkCreated:    messaging.Discard[LinkCreatedEvent](),
		LinkUpdated:    messaging.Discard[LinkUpdatedEvent](),
		LinkDeleted:    messaging.Discard[LinkDeletedEvent](),
		LinkAccessed:   messaging.Discard[LinkAccessedEvent](),
	}
}
