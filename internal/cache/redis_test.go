package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/view"
)

func TestFlightsKey(t *testing.T) {
	assert.Equal(t, "cache:flights:active", flightsKey("active"))
	assert.Equal(t, "cache:flights:upcoming", flightsKey(ScopeUpcoming))
}

func TestNewRedisCache_TTL(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379", FlightsCacheTTL: 90})
	defer c.Close()

	assert.Equal(t, 90*time.Second, c.flightsTTL)
}

func TestRedisCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheWithClient(client, time.Minute)
	defer c.Close()
	ctx := context.Background()

	_, err := c.GetFlights(ctx, "active")
	require.Error(t, err)
	assert.Error(t, c.SetFlights(ctx, "active", []view.Flight{{ID: 1}}))
	assert.Error(t, c.InvalidateFlights(ctx))
}

func newMockCache(t *testing.T) (*RedisCache, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(client, time.Minute)
	t.Cleanup(func() { c.Close() })
	return c, mock
}

func TestRedisCache_GetFlights_Miss(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectGet("cache:flights:active").RedisNil()

	got, err := c.GetFlights(context.Background(), ScopeActive)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_SetThenGet(t *testing.T) {
	c, mock := newMockCache(t)
	flights := []view.Flight{{
		ID:            1,
		FlightNumber:  "BA117",
		Origin:        "London",
		Destination:   "New York",
		DepartureDate: time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC),
		BasePrice:     100,
		Capacity:      map[domain.SeatClass]int{domain.SeatClassEconomy: 2},
		Remaining:     map[domain.SeatClass]int{domain.SeatClassEconomy: 1},
	}}
	payload, err := json.Marshal(flights)
	require.NoError(t, err)

	mock.ExpectSet("cache:flights:upcoming", payload, time.Minute).SetVal("OK")
	mock.ExpectGet("cache:flights:upcoming").SetVal(string(payload))

	require.NoError(t, c.SetFlights(context.Background(), ScopeUpcoming, flights))
	got, err := c.GetFlights(context.Background(), ScopeUpcoming)

	require.NoError(t, err)
	assert.Equal(t, flights, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_GetFlights_Corrupt(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectGet("cache:flights:active").SetVal("{not json")

	_, err := c.GetFlights(context.Background(), ScopeActive)

	assert.Error(t, err)
}

func TestRedisCache_InvalidateFlights(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectDel("cache:flights:active", "cache:flights:upcoming").SetVal(2)

	require.NoError(t, c.InvalidateFlights(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_InvalidateFlights_Error(t *testing.T) {
	c, mock := newMockCache(t)
	mock.ExpectDel("cache:flights:active", "cache:flights:upcoming").SetErr(errors.New("READONLY"))

	assert.EqualError(t, c.InvalidateFlights(context.Background()), "READONLY")
}
