package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-service/internal/models"
)

const (
	sessionKeyPrefix = "session:"
	promotionsKey    = "promotions:active"
)

// Client wraps Redis as the scalar session store: anonymous session tokens,
// the current-identity binding per token, and the cached active-promotion
// blob. Keys have no expiry; removal is always explicit.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// BindSession maps a session token to a user id. A user id of zero marks the
// session anonymous.
func (c *Client) BindSession(ctx context.Context, token string, userID int64) error {
	return c.rdb.Set(ctx, sessionKeyPrefix+token, strconv.FormatInt(userID, 10), 0).Err()
}

// SessionUserID resolves a session token to its bound user id. An unknown
// token resolves to zero (anonymous) without an error; the caller decides
// whether to mint a fresh binding.
func (c *Client) SessionUserID(ctx context.Context, token string) (int64, error) {
	val, err := c.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}

// DeleteSession removes a session binding.
func (c *Client) DeleteSession(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}

// CacheActivePromotions stores the active-promotion blob.
func (c *Client) CacheActivePromotions(ctx context.Context, promotions []models.Promotion) error {
	blob, err := json.Marshal(promotions)
	if err != nil {
		return fmt.Errorf("failed to marshal promotions: %w", err)
	}
	return c.rdb.Set(ctx, promotionsKey, blob, 0).Err()
}

// GetCachedPromotions retrieves the cached active-promotion blob. A cache
// miss returns (nil, false, nil).
func (c *Client) GetCachedPromotions(ctx context.Context) ([]models.Promotion, bool, error) {
	blob, err := c.rdb.Get(ctx, promotionsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var promotions []models.Promotion
	if err := json.Unmarshal(blob, &promotions); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached promotions: %w", err)
	}
	return promotions, true, nil
}

// InvalidatePromotions drops the cached promotion blob so the next read
// refetches from the store.
func (c *Client) InvalidatePromotions(ctx context.Context) error {
	return c.rdb.Del(ctx, promotionsKey).Err()
}
