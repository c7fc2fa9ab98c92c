package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/access"
	"github.com/serroba/shortlinks/internal/account"
	"github.com/serroba/shortlinks/internal/events"
	"github.com/serroba/shortlinks/internal/handlers"
	"github.com/serroba/shortlinks/internal/health"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/middleware"
	"github.com/serroba/shortlinks/internal/session"
	"github.com/serroba/shortlinks/internal/shortener"
	"github.com/serroba/shortlinks/internal/store"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// Redis owns the shared client and closes it on shutdown.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error { return r.Client.Close() }

// Postgres owns the connection pool and closes it on shutdown.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// EventBus is the watermill transport: in-process channels, or redis streams
// when redis is configured.
type EventBus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	InProcess  bool
}

// Shutdown closes both ends. Closing an already closed end is a no-op.
func (b *EventBus) Shutdown() error {
	return errors.Join(b.Publisher.Close(), b.Subscriber.Close())
}

// LoggerPackage provides the application logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogLevel)
	})
}

// RedisPackage provides a connected redis client. Only invoked when RedisAddr is set.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect to redis at %s: %w", opts.RedisAddr, err)
		}

		return &Redis{Client: client}, nil
	})
}

// PostgresPackage provides a migrated connection pool. Only invoked for postgres storage.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		if err := store.Migrate(ctx, pool); err != nil {
			pool.Close()

			return nil, err
		}

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the user, link and session stores for the configured backends.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (account.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Storage == StoragePostgres {
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewUserPostgresStore(pg.Pool), nil
		}

		return store.NewUserMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		var links shortener.Repository = store.NewLinkMemoryStore()

		if opts.Storage == StoragePostgres {
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			links = store.NewLinkPostgresStore(pg.Pool)
		}

		if opts.RedisAddr == "" {
			return links, nil
		}

		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return store.NewLinkCacheRepository(links, rdb.Client, opts.CacheLifetime()), nil
	})

	do.Provide(i, func(i *do.Injector) (session.Store, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.RedisAddr == "" {
			return store.NewSessionMemoryStore(), nil
		}

		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return store.NewSessionRedisStore(rdb.Client), nil
	})
}

// EventBusPackage provides the watermill publisher and subscriber.
func EventBusPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*EventBus, error) {
		opts := do.MustInvoke[*Options](i)
		logger := messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i).Named("watermill"))

		if opts.RedisAddr == "" {
			pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)

			return &EventBus{Publisher: pubSub, Subscriber: pubSub, InProcess: true}, nil
		}

		rdb, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     rdb.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        rdb.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		return &EventBus{Publisher: publisher, Subscriber: subscriber}, nil
	})
}

// PublisherGroupPackage provides the typed event publishers.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		bus, err := do.Invoke[*EventBus](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(bus.Publisher), nil
	})

	do.Provide(i, func(i *do.Injector) (*events.Publishers, error) {
		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return events.NewPublishers(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the consumers feeding lifecycle events to the log sink.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		bus, err := do.Invoke[*EventBus](i)
		if err != nil {
			return nil, err
		}

		logger := do.MustInvoke[*zap.Logger](i)
		group := messaging.NewConsumerGroup(bus.Subscriber, logger)
		events.NewLogSink(logger.Named("events")).Subscribe(group, bus.Subscriber, logger)

		return group, nil
	})
}

// ServicePackage provides the domain services and the access controller.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*access.Controller, error) {
		opts := do.MustInvoke[*Options](i)

		users, err := do.Invoke[account.Repository](i)
		if err != nil {
			return nil, err
		}

		links, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		sessions, err := do.Invoke[session.Store](i)
		if err != nil {
			return nil, err
		}

		publishers, err := do.Invoke[*events.Publishers](i)
		if err != nil {
			return nil, err
		}

		generator, err := shortener.NewCodeGenerator()
		if err != nil {
			return nil, err
		}

		return access.NewController(
			account.NewService(users),
			session.NewAuthority(sessions, opts.SessionLifetime()),
			shortener.NewRegistry(links, generator),
			publishers,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		router := chi.NewMux()
		router.Use(chimw.RequestID, chimw.Recoverer, middleware.AccessLog(logger.Named("http")))

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		controller, err := do.Invoke[*access.Controller](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("Short Links", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		handlers.RegisterRoutes(api,
			handlers.NewAuthHandler(controller, opts.SecureCookies, logger),
			handlers.NewLinkHandler(controller, opts.PublicBaseURL(), logger),
		)
		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts)))

		return api, nil
	})
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := make(map[string]health.Checker)

	if opts.RedisAddr != "" {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
	}

	if opts.Storage == StoragePostgres {
		checkers["postgres"] = health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool)
	}

	return checkers
}

// Register provides every package the server needs.
func Register(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	RepositoryPackage(i)
	EventBusPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	ServicePackage(i)
	HTTPPackage(i)
}
