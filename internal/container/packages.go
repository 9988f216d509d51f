package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/audit"
	auditstore "github.com/serroba/shortlink/internal/audit/store"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/ratelimit"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

const (
	startupTimeout     = 10 * time.Second
	auditConsumerGroup = "audit"
)

// redisConn owns the Redis client and closes its pool on injector shutdown.
// The redisstream publisher and subscriber close the same client, so a
// second close is not an error.
type redisConn struct {
	client *redis.Client
}

func (c *redisConn) Shutdown() error {
	if err := c.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("close redis: %w", err)
	}

	return nil
}

// LoggerPackage provides the zap logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client. It only connects when first used.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*redisConn, error) {
		opts := do.MustInvoke[*Options](i)

		return &redisConn{client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})

	do.Provide(i, func(i *do.Injector) (redis.UniversalClient, error) {
		return do.MustInvoke[*redisConn](i).client, nil
	})
}

// PostgresPackage provides the PostgreSQL store, creating its table on first use.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.PostgresStore, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}

		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()

			return nil, err
		}

		return pg, nil
	})
}

// SQLitePackage provides the SQLite store.
func SQLitePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*store.SQLiteStore, error) {
		opts := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		return store.NewSQLiteStore(ctx, opts.SQLitePath)
	})
}

// RepositoryPackage provides the mapping store selected by Options.Store,
// wrapped in the Redis cache when one is configured.
func RepositoryPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			durable shortener.Store
			err     error
		)

		switch opts.Store {
		case StoreRedis:
			durable = store.NewRedisStore(do.MustInvoke[redis.UniversalClient](i))
		case StorePostgres:
			durable, err = do.Invoke[*store.PostgresStore](i)
		case StoreSQLite:
			durable, err = do.Invoke[*store.SQLiteStore](i)
		default:
			durable = store.NewMemoryStore()
		}

		if err != nil {
			return nil, err
		}

		if opts.cached() {
			logger.Info("redis lookup cache enabled", zap.Duration("ttl", opts.cacheTTL()))

			return store.NewCachedStore(durable, do.MustInvoke[redis.UniversalClient](i), opts.cacheTTL()), nil
		}

		logger.Info("mapping store ready", zap.String("store", opts.Store))

		return durable, nil
	})
}

// ServicePackage provides the token generator and the mapping service.
func ServicePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.TokenGenerator, error) {
		return do.MustInvoke[*Options](i).tokenGenerator()
	})

	do.Provide(i, func(i *do.Injector) (*shortener.Service, error) {
		return shortener.NewService(
			do.MustInvoke[shortener.Store](i),
			do.MustInvoke[shortener.TokenGenerator](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// RateLimitPackage provides the limiter. Counters live in Redis whenever the
// service already talks to Redis, so limits hold across replicas.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		if do.MustInvoke[*Options](i).usesRedis() {
			return store.NewWindowRedisStore(do.MustInvoke[redis.UniversalClient](i)), nil
		}

		return store.NewWindowMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		return ratelimit.NewLimiter(do.MustInvoke[ratelimit.Store](i), ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the change event publish function.
// With events disabled every event is dropped.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.Publisher, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		pub, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[redis.UniversalClient](i),
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, newZapAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("redis stream publisher: %w", err)
		}

		return messaging.NewPublisher(pub), nil
	})

	do.Provide(i, func(i *do.Injector) (messaging.Publish[audit.MappingChanged], error) {
		if !do.MustInvoke[*Options](i).Events {
			return messaging.Discard[audit.MappingChanged](), nil
		}

		pub, err := do.Invoke[*messaging.Publisher](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[audit.MappingChanged](pub, audit.TopicMappingChanged), nil
	})
}

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(
			chimiddleware.RequestID,
			chimiddleware.Recoverer,
			cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
				ExposedHeaders: []string{"Location"},
				MaxAge:         300,
			}),
		)

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		svc := do.MustInvoke[*shortener.Service](i)
		mappings := do.MustInvoke[shortener.Store](i)

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.RateLimit(api, do.MustInvoke[*ratelimit.Limiter](i), logger),
		)

		handlers.RegisterRoutes(api,
			handlers.NewMappingHandler(svc, do.MustInvoke[messaging.Publish[audit.MappingChanged]](i), logger),
			handlers.NewRedirectHandler(svc, logger),
		)

		// In-process stores have nothing to ping.
		checker, _ := mappings.(health.Checker)
		health.RegisterRoutes(api, health.NewHandler(opts.Store, checker))

		return api, nil
	})
}

// ConsumerGroupPackage provides the consumer group writing change events to the audit log.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		sub, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[redis.UniversalClient](i),
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: auditConsumerGroup,
		}, newZapAdapter(logger))
		if err != nil {
			return nil, fmt.Errorf("redis stream subscriber: %w", err)
		}

		group := messaging.NewConsumerGroup(sub, logger)
		group.Add(messaging.NewConsumer(
			sub,
			audit.TopicMappingChanged,
			audit.NewHandler(auditstore.NewLog(logger)),
			logger,
		))

		return group, nil
	})
}
