package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a consumer bound to one topic.
type Runnable interface {
	Topic() string
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs the consumers reading lifecycle events off one
// subscriber. The server runs it in-process; the consumer binary runs it
// against the redis stream.
type ConsumerGroup struct {
	consumers  []Runnable
	subscriber message.Subscriber
	logger     *zap.Logger
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

func (g *ConsumerGroup) Len() int {
	return len(g.consumers)
}

// Topics lists the subscribed topics in registration order.
func (g *ConsumerGroup) Topics() []string {
	topics := make([]string, 0, len(g.consumers))
	for _, consumer := range g.consumers {
		topics = append(topics, consumer.Topic())
	}

	return topics
}

// Start subscribes every consumer. On failure the ones already running are
// stopped and no topic is left half-subscribed.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			_ = g.stop(g.consumers[:i])

			return fmt.Errorf("start consumer for %s: %w", consumer.Topic(), err)
		}
	}

	g.logger.Info("event consumers started", zap.Strings("topics", g.Topics()))

	return nil
}

// Shutdown stops every consumer, latest first, then closes the subscriber.
// All failures are joined into the returned error.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("stopping event consumers", zap.Int("count", len(g.consumers)))

	return errors.Join(g.stop(g.consumers), g.subscriber.Close())
}

func (g *ConsumerGroup) stop(consumers []Runnable) error {
	var errs []error

	for i := len(consumers) - 1; i >= 0; i-- {
		if err := consumers[i].Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("stop consumer for %s: %w", consumers[i].Topic(), err))
		}
	}

	return errors.Join(errs...)
}
