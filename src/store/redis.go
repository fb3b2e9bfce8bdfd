package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/TTRSQ/gdax/domains/product"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// DefaultTTL of the latest ticker and the time series.
const DefaultTTL = 2 * time.Minute

// ErrNotFound is returned by Latest when nothing is stored for the product.
var ErrNotFound = errors.New("no ticker stored")

// Point is one entry of the price time series.
type Point struct {
	TradeID json.Number     `json:"trade_id"`
	Price   decimal.Decimal `json:"price"`
	Time    time.Time       `json:"time"`
}

// TickerStore keeps the latest ticker of each product and a price time series.
type TickerStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewTickerStore ttl <= 0 takes DefaultTTL.
func NewTickerStore(client redis.Cmdable, ttl time.Duration) *TickerStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TickerStore{client: client, ttl: ttl}
}

func latestKey(productID string) string { return "latest:" + productID }

func timeseriesKey(productID string) string { return "timeseries:" + productID }

func score(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func formatScore(t time.Time) string {
	return strconv.FormatFloat(score(t), 'f', -1, 64)
}

// Save stores t as the latest ticker of productID and appends its price to the
// series when t carries a time.
func (s *TickerStore) Save(ctx context.Context, productID string, t product.Ticker) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("[store][Save] marshal ticker: %w", err)
	}
	member, err := json.Marshal(Point{TradeID: t.TradeID, Price: t.Price, Time: t.Time})
	if err != nil {
		return fmt.Errorf("[store][Save] marshal point: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, latestKey(productID), data, s.ttl)
	// a ticker without time has no place in the series
	if !t.Time.IsZero() {
		key := timeseriesKey(productID)
		pipe.ZAdd(ctx, key, redis.Z{Score: score(t.Time), Member: string(member)})
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("[store][Save] %s: %w", productID, err)
	}
	return nil
}

// Latest returns the last saved ticker of productID.
func (s *TickerStore) Latest(ctx context.Context, productID string) (product.Ticker, error) {
	ret := product.Ticker{}
	data, err := s.client.Get(ctx, latestKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ret, fmt.Errorf("[store][Latest] %s: %w", productID, ErrNotFound)
		}
		return ret, fmt.Errorf("[store][Latest] %s: %w", productID, err)
	}
	if err := json.Unmarshal(data, &ret); err != nil {
		return ret, fmt.Errorf("[store][Latest] unmarshal: %w", err)
	}
	return ret, nil
}

// Range returns the points of productID in [from, to], oldest first.
func (s *TickerStore) Range(ctx context.Context, productID string, from, to time.Time) ([]Point, error) {
	members, err := s.client.ZRangeByScore(ctx, timeseriesKey(productID), &redis.ZRangeBy{
		Min: formatScore(from),
		Max: formatScore(to),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("[store][Range] %s: %w", productID, err)
	}

	ret := make([]Point, 0, len(members))
	for _, m := range members {
		p := Point{}
		if err := json.Unmarshal([]byte(m), &p); err != nil {
			return nil, fmt.Errorf("[store][Range] unmarshal %q: %w", m, err)
		}
		ret = append(ret, p)
	}
	return ret, nil
}

// Trim drops the points of productID older than before.
func (s *TickerStore) Trim(ctx context.Context, productID string, before time.Time) (int64, error) {
	n, err := s.client.ZRemRangeByScore(ctx, timeseriesKey(productID), "-inf", "("+formatScore(before)).Result()
	if err != nil {
		return 0, fmt.Errorf("[store][Trim] %s: %w", productID, err)
	}
	return n, nil
}

// Ping checks the connection.
func (s *TickerStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
