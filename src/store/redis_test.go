package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/TTRSQ/gdax/domains/product"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*TickerStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTickerStore(client, time.Minute), mr
}

func ticker(tradeID, price string, at time.Time) product.Ticker {
	return product.Ticker{
		TradeID: json.Number(tradeID),
		Price:   decimal.RequireFromString(price),
		Size:    decimal.RequireFromString("0.01"),
		Bid:     decimal.RequireFromString(price),
		Ask:     decimal.RequireFromString(price).Add(decimal.RequireFromString("0.01")),
		Time:    at,
	}
}

func TestTickerStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)
	require.NoError(t, s.Ping(ctx))

	_, err := s.Latest(ctx, "BTC-USD")
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2017, 9, 2, 17, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, "BTC-USD", ticker("1", "4000.10", base)))
	require.NoError(t, s.Save(ctx, "BTC-USD", ticker("2", "4000.10", base.Add(time.Second))))
	require.NoError(t, s.Save(ctx, "BTC-USD", ticker("3", "4001", base.Add(2*time.Second))))
	require.NoError(t, s.Save(ctx, "ETH-USD", ticker("9", "300", base)))

	latest, err := s.Latest(ctx, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "3", latest.TradeID.String())
	assert.Equal(t, "4001", latest.Price.String())
	assert.True(t, latest.Time.Equal(base.Add(2*time.Second)))

	points, err := s.Range(ctx, "BTC-USD", base, base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "1", points[0].TradeID.String())
	assert.Equal(t, "2", points[1].TradeID.String())
	assert.Equal(t, "4000.1", points[1].Price.String())

	n, err := s.Trim(ctx, "BTC-USD", base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	points, err = s.Range(ctx, "BTC-USD", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, points, 2)

	mr.FastForward(2 * time.Minute)
	_, err = s.Latest(ctx, "BTC-USD")
	assert.ErrorIs(t, err, ErrNotFound)
	points, err = s.Range(ctx, "BTC-USD", base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestSaveWithoutTime(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t)

	require.NoError(t, s.Save(ctx, "BTC-USD", ticker("1", "4000", time.Time{})))

	latest, err := s.Latest(ctx, "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "1", latest.TradeID.String())
	assert.True(t, latest.Time.IsZero())
	assert.False(t, mr.Exists(timeseriesKey("BTC-USD")))

	points, err := s.Range(ctx, "BTC-USD", time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, points)
}
