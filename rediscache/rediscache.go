// Package rediscache shares normalized posts between multiblog instances
// through Redis.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/multiblog"
	"github.com/redis/go-redis/v9"
)

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

// connectionTimeout bounds the initial ping.
const connectionTimeout = 5 * time.Second

// Config holds Redis connection settings.
type Config struct {
	Address  string
	Password string
	DB       int
}

// Cache stores post lists under keys that include the slug transform
// version, so a changed Slugify never serves stale slugs.
type Cache struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Cache, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: fmt.Sprintf("multiblog:posts:v%d:", multiblog.SlugVersion),
	}
}

func (c *Cache) key(sourceID string) string {
	return c.prefix + sourceID
}

// GetPosts returns the stored posts of sourceID. ok is false on a miss.
func (c *Cache) GetPosts(ctx context.Context, sourceID string) ([]multiblog.Post, bool, error) {
	raw, err := c.client.Get(ctx, c.key(sourceID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get posts %s: %w", sourceID, err)
	}
	var posts []multiblog.Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false, fmt.Errorf("decode posts %s: %w", sourceID, err)
	}
	return posts, true, nil
}

// SetPosts stores posts for ttl.
func (c *Cache) SetPosts(ctx context.Context, sourceID string, posts []multiblog.Post, ttl time.Duration) error {
	if posts == nil {
		posts = []multiblog.Post{}
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("encode posts %s: %w", sourceID, err)
	}
	if err := c.client.Set(ctx, c.key(sourceID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("set posts %s: %w", sourceID, err)
	}
	return nil
}

// DeletePosts removes the stored posts of sourceID.
func (c *Cache) DeletePosts(ctx context.Context, sourceID string) error {
	if err := c.client.Del(ctx, c.key(sourceID)).Err(); err != nil {
		return fmt.Errorf("delete posts %s: %w", sourceID, err)
	}
	return nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
