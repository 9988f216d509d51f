package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
	"golang.org/x/sync/singleflight"
)

// Pinger is implemented by stores that talk to a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CachedStore wraps a durable shortener.Store with a Redis read-through cache.
// Writes reach the durable store first and then evict the cached value. A load
// only fills the cache when no write to this store happened while it read the
// durable value, so a stale read never outlives a delete or an update.
type CachedStore struct {
	store  shortener.Store
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	loads  singleflight.Group

	mu  sync.Mutex
	gen uint64
}

// NewCachedStore creates a new Redis-cached store decorator.
func NewCachedStore(store shortener.Store, client redis.UniversalClient, ttl time.Duration) *CachedStore {
	return &CachedStore{
		store:  store,
		client: client,
		prefix: "cache:url:",
		ttl:    ttl,
	}
}

// Get checks the cache first and populates it on a miss.
// Concurrent misses for one key share a single durable read that outlives
// the cancellation of any one caller.
func (c *CachedStore) Get(ctx context.Context, key string) (string, error) {
	url, err := c.client.Get(ctx, c.prefix+key).Result()
	if err == nil {
		return url, nil
	}

	loaded := c.loads.DoChan(key, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-loaded:
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

// Keys always enumerates the durable store; the cache holds only a subset.
func (c *CachedStore) Keys(ctx context.Context) ([]string, error) {
	return c.store.Keys(ctx)
}

func (c *CachedStore) SetIfAbsent(ctx context.Context, key, value string) (bool, error) {
	created, err := c.store.SetIfAbsent(ctx, key, value)
	if created || err != nil {
		c.invalidate(ctx, key)
	}

	return created, err
}

func (c *CachedStore) Set(ctx context.Context, key, value string) error {
	err := c.store.Set(ctx, key, value)
	c.invalidate(ctx, key)

	return err
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	err := c.store.Delete(ctx, key)
	c.invalidate(ctx, key)

	return err
}

// Ping checks both the cache and, when supported, the durable store.
func (c *CachedStore) Ping(ctx context.Context) error {
	cacheErr := c.client.Ping(ctx).Err()

	var storeErr error
	if p, ok := c.store.(Pinger); ok {
		storeErr = p.Ping(ctx)
	}

	return errors.Join(cacheErr, storeErr)
}

// Shutdown releases the durable store when it holds resources.
func (c *CachedStore) Shutdown() error {
	if s, ok := c.store.(interface{ Shutdown() error }); ok {
		return s.Shutdown()
	}

	return nil
}

func (c *CachedStore) load(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	url, err := c.store.Get(ctx, key)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen == gen {
		_ = c.client.Set(ctx, c.prefix+key, url, c.ttl).Err()
	}

	return url, nil
}

// invalidate runs after every durable write, successful or not.
func (c *CachedStore) invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.loads.Forget(key)
	_ = c.client.Del(context.WithoutCancel(ctx), c.prefix+key).Err()
}

// Compile-time check.
var _ shortener.Store = (*CachedStore)(nil)
