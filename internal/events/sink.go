package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlinks/internal/messaging"
	"go.uber.org/zap"
)

// LogSink writes every lifecycle event to the logger.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that records events as structured log lines.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) UserRegistered(_ context.Context, event *UserRegisteredEvent) error {
	s.logger.Info("user registered",
		zap.String("userId", event.UserID),
		zap.Time("registeredAt", event.RegisteredAt),
	)

	return nil
}

func (s *LogSink) LinkCreated(_ context.Context, event *LinkCreatedEvent) error {
	s.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.String("ownerId", event.OwnerID),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (s *LogSink) LinkUpdated(_ context.Context, event *LinkUpdatedEvent) error {
	s.logger.Info("link updated",
		zap.String("code", event.Code),
		zap.String("longUrl", event.LongURL),
		zap.Time("updatedAt", event.UpdatedAt),
	)

	return nil
}

func (s *LogSink) LinkDeleted(_ context.Context, event *LinkDeletedEvent) error {
	s.logger.Info("link deleted",
		zap.String("code", event.Code),
		zap.Time("deletedAt", event.DeletedAt),
	)

	return nil
}

func (s *LogSink) LinkAccessed(_ context.Context, event *LinkAccessedEvent) error {
	s.logger.Info("link accessed",
		zap.String("code", event.Code),
		zap.Time("accessedAt", event.AccessedAt),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

// Subscribe adds one consumer per topic to the group, all feeding the sink.
func (s *LogSink) Subscribe(group *messaging.ConsumerGroup, subscriber message.Subscriber, logger *zap.Logger) {
	group.Add(messaging.NewConsumer(subscriber, TopicUserRegistered, s.UserRegistered, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkCreated, s.LinkCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkUpdated, s.LinkUpdated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkDeleted, s.LinkDeleted, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicLinkAccessed, s.LinkAccessed, logger))
}
