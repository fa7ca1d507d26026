package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/view"
)

// Flight listings are cached per scope. A committed command drops every scope
// at once.
const (
	flightsKeyPrefix = "cache:flights:"

	ScopeActive   = "active"
	ScopeUpcoming = "upcoming"
)

var flightScopes = []string{ScopeActive, ScopeUpcoming}

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		cfg.TTL(),
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context, scope string) ([]view.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey(scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []view.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, scope string, flights []view.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(scope), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	keys := make([]string, 0, len(flightScopes))
	for _, scope := range flightScopes {
		keys = append(keys, flightsKey(scope))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func flightsKey(scope string) string {
	return flightsKeyPrefix + scope
}
