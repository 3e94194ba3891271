package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yespecom/server-updated-sub001/internal/config"
)

// Nil is re-exported so callers can distinguish cache misses without
// importing go-redis.
var Nil = redis.Nil

type Client struct {
	client *redis.Client
}

// NewClient creates a new Redis client and verifies connectivity.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

// StoreRoute is the cached result of resolving a store identifier against
// the platform database.
type StoreRoute struct {
	TenantID string `json:"tenant_id"`
	StoreID  string `json:"store_id"`
	Email    string `json:"email"`
}

func storeRouteKey(storeID string) string {
	return fmt.Sprintf("store:route:%s", storeID)
}

// GetStoreRoute returns the cached route for a store identifier, or
// cache.Nil on a miss.
func (c *Client) GetStoreRoute(ctx context.Context, storeID string) (*StoreRoute, error) {
	raw, err := c.client.Get(ctx, storeRouteKey(storeID)).Result()
	if err != nil {
		return nil, err
	}

	route := &StoreRoute{}
	if err := json.Unmarshal([]byte(raw), route); err != nil {
		return nil, fmt.Errorf("failed to decode cached store route: %w", err)
	}
	return route, nil
}

// SetStoreRoute caches a resolved store route.
func (c *Client) SetStoreRoute(ctx context.Context, storeID string, route *StoreRoute, expiration time.Duration) error {
	raw, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("failed to encode store route: %w", err)
	}
	return c.client.Set(ctx, storeRouteKey(storeID), raw, expiration).Err()
}

// InvalidateStoreRoute drops the cached route for a store.
func (c *Client) InvalidateStoreRoute(ctx context.Context, storeID string) error {
	return c.client.Del(ctx, storeRouteKey(storeID)).Err()
}

func resetCodeKey(email string) string {
	return fmt.Sprintf("pwreset:%s", email)
}

// SetResetCode stores the hashed password-reset code for an account.
func (c *Client) SetResetCode(ctx context.Context, email, codeHash string, expiration time.Duration) error {
	return c.client.Set(ctx, resetCodeKey(email), codeHash, expiration).Err()
}

// GetResetCode returns the hashed reset code, or cache.Nil if none is
// outstanding.
func (c *Client) GetResetCode(ctx context.Context, email string) (string, error) {
	return c.client.Get(ctx, resetCodeKey(email)).Result()
}

// DeleteResetCode consumes an outstanding reset code.
func (c *Client) DeleteResetCode(ctx context.Context, email string) error {
	return c.client.Del(ctx, resetCodeKey(email)).Err()
}

// Close closes the Redis client.
func (c *Client) Close() error {
	return c.client.Close()
}
