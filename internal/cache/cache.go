package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client. By default it fails safe by swallowing
// connectivity errors; see Required for callers that must know.
type Client struct {
	client   *redis.Client
	required bool
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// NewWithClient wraps an existing redis client.
func NewWithClient(rc *redis.Client) *Client {
	return &Client{client: rc}
}

// Required returns a view of the same connection that reports redis errors
// instead of hiding them. Session state must not silently disappear.
func (c *Client) Required() *Client {
	if c == nil {
		return &Client{required: true}
	}
	return &Client{client: c.client, required: true}
}

// Get returns value or nil if missing. Redis errors are reported only in
// required mode; otherwise they behave like a cache miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, c.unavailable()
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, c.failure("get", key, err)
	}
	return res, nil
}

// Set stores value with TTL. A zero TTL keeps the key until overwritten.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return c.unavailable()
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return c.failure("set", key, err)
	}
	return nil
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return c.unavailable()
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return c.failure("delete", key, err)
	}
	return nil
}

// Ping checks connectivity. It always reports errors.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) unavailable() error {
	if c != nil && c.required {
		return fmt.Errorf("redis client not configured")
	}
	return nil
}

func (c *Client) failure(op, key string, err error) error {
	if !c.required {
		// fail safe: behave like a miss / ignore the write
		return nil
	}
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}
