// Package cache keeps geocoding results in Redis so repeated dataset loads do
// not hit the rate-limited geocoder again.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"companymap/pkg/location"
)

const keyPrefix = "companymap:geocode:"

// kv is the subset of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// GeocodeCache implements location.Cache on top of Redis.
type GeocodeCache struct {
	client kv
	ttl    time.Duration
}

var _ location.Cache = (*GeocodeCache)(nil)

// NewGeocodeCache returns a cache storing entries for ttl. A zero ttl keeps
// entries until evicted.
func NewGeocodeCache(client kv, ttl time.Duration) *GeocodeCache {
	return &GeocodeCache{client: client, ttl: ttl}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func cacheKey(query string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(query))
}

func (c *GeocodeCache) Get(ctx context.Context, query string) (location.Location, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return location.Location{}, false, nil
	}
	if err != nil {
		return location.Location{}, false, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	var loc location.Location
	if err := json.Unmarshal(data, &loc); err != nil {
		return location.Location{}, false, fmt.Errorf("failed to decode cached location: %w", err)
	}
	return loc, true, nil
}

func (c *GeocodeCache) Set(ctx context.Context, query string, loc location.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	return nil
}
