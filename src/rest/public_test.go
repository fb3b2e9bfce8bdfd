package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/domains/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func TestExchangeName(t *testing.T) {
	assert.Equal(t, "gdax", NewPublic("").ExchangeName())
}

func TestGetProductTicker(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products/BTC-USD/ticker", r.URL.Path)
		assert.Equal(t, "gdax-go-client", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("CB-ACCESS-KEY"))
		writeJSON(w, http.StatusOK, `{"trade_id":4729088,"price":"333.99","size":"0.193","bid":"333.98","ask":"333.99","volume":"5957.11914015","time":"2015-11-14T20:46:03.511254Z"}`)
	})

	ticker, err := NewPublic(srv.URL).GetProductTicker(context.Background(), "BTC-USD")
	require.NoError(t, err)
	assert.Equal(t, "4729088", ticker.TradeID.String())
	assert.True(t, ticker.Price.Equal(decimal.RequireFromString("333.99")))
	assert.True(t, ticker.Ask.GreaterThan(ticker.Bid))
	assert.Equal(t, 2015, ticker.Time.Year())
}

func TestGetProductOrderBook(t *testing.T) {
	tests := []struct {
		name      string
		level     int
		wantLevel string
		body      string
		check     func(t *testing.T, bids, asks int, numOrders int, orderID string)
	}{
		{
			name:      "default level",
			level:     0,
			wantLevel: "1",
			body:      `{"sequence":3,"bids":[["295.96","4.39088265",2]],"asks":[["295.97","25.23542881",12]]}`,
			check: func(t *testing.T, bids, asks int, numOrders int, orderID string) {
				assert.Equal(t, 1, bids)
				assert.Equal(t, 1, asks)
				assert.Equal(t, 2, numOrders)
				assert.Empty(t, orderID)
			},
		},
		{
			name:      "level 3",
			level:     3,
			wantLevel: "3",
			body:      `{"sequence":3,"bids":[["295.96","0.05088265","3b0f1225-7f84-490b-a29f-0faef9de823a"]],"asks":[]}`,
			check: func(t *testing.T, bids, asks int, numOrders int, orderID string) {
				assert.Equal(t, 1, bids)
				assert.Equal(t, 0, asks)
				assert.Equal(t, 0, numOrders)
				assert.Equal(t, "3b0f1225-7f84-490b-a29f-0faef9de823a", orderID)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/products/BTC-USD/book", r.URL.Path)
				assert.Equal(t, tt.wantLevel, r.URL.Query().Get("level"))
				writeJSON(w, http.StatusOK, tt.body)
			})
			book, err := NewPublic(srv.URL).GetProductOrderBook(context.Background(), "BTC-USD", tt.level)
			require.NoError(t, err)
			assert.Equal(t, int64(3), book.Sequence)
			tt.check(t, len(book.Bids), len(book.Asks), book.Bids[0].NumOrders, book.Bids[0].OrderID)
		})
	}
}

func TestGetProductOrderBookBadLevel(t *testing.T) {
	_, err := NewPublic("http://127.0.0.1:1").GetProductOrderBook(context.Background(), "BTC-USD", 4)
	assert.Error(t, err)
}

func TestGetProductTradesCursor(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Header().Set("CB-BEFORE", "75")
		w.Header().Set("CB-AFTER", "65")
		writeJSON(w, http.StatusOK, `[{"time":"2014-11-07T22:19:28.578544Z","trade_id":74,"price":"10.00000000","size":"0.01000000","side":"buy"}]`)
	})

	trades, cursor, err := NewPublic(srv.URL).GetProductTrades(context.Background(), "BTC-USD", &page.Args{Limit: 10})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(74), trades[0].TradeID)
	assert.Equal(t, page.Cursor{Before: "75", After: "65"}, cursor)

	next, ok := cursor.Next(10)
	require.True(t, ok)
	assert.Equal(t, page.Args{After: 65, Limit: 10}, next)
}

func TestGetProductTradesRejectsUnboundedArgs(t *testing.T) {
	var hits int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	})
	_, _, err := NewPublic(srv.URL).GetProductTrades(context.Background(), "BTC-USD", &page.Args{})
	assert.ErrorIs(t, err, page.ErrNoBound)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestAPIError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message":"NotFound"}`)
	})

	_, err := NewPublic(srv.URL).GetProduct24HrStats(context.Background(), "NOPE-USD")
	require.Error(t, err)
	apiErr := &APIError{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NotFound", apiErr.Message)
	assert.False(t, apiErr.IsRateLimited())
}

func TestGetProductHistoricRates(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/ETH-USD/candles", r.URL.Path)
		assert.Equal(t, "3600", r.URL.Query().Get("granularity"))
		assert.Equal(t, "2017-01-01T00:00:00Z", r.URL.Query().Get("start"))
		writeJSON(w, http.StatusOK, `[[1483232400,8.1,8.3,8.2,8.25,120.5],[1483228800,8.0,8.2,8.05,8.1,99]]`)
	})

	candles, err := NewPublic(srv.URL).GetProductHistoricRates(context.Background(), "ETH-USD", product.HistoricRatesArgs{
		Start:       time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2017, 1, 1, 1, 0, 0, 0, time.UTC),
		Granularity: 3600,
	})
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, int64(1483232400), candles[0].Time.Unix())
	assert.True(t, candles[0].Close.Equal(decimal.RequireFromString("8.25")))
}

func TestGetProductHistoricRatesBadGranularity(t *testing.T) {
	_, err := NewPublic("http://127.0.0.1:1").GetProductHistoricRates(context.Background(), "ETH-USD", product.HistoricRatesArgs{Granularity: 61})
	assert.Error(t, err)
}

func TestCurrenciesAndTime(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/currencies":
			writeJSON(w, http.StatusOK, `[{"id":"BTC","name":"Bitcoin","min_size":"0.00000001"},{"id":"USD","name":"United States Dollar","min_size":"0.01000000"}]`)
		case "/time":
			writeJSON(w, http.StatusOK, `{"iso":"2015-01-07T23:47:25.201Z","epoch":1420674445.201}`)
		default:
			http.NotFound(w, r)
		}
	})
	c := NewPublic(srv.URL)

	currencies, err := c.GetCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	assert.Equal(t, "BTC", string(currencies[0].ID))

	now, err := c.GetTime(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1420674445.201, now.Epoch, 0.001)
}

// tradeServer serves trade ids 1..latest with before/after semantics, newest first.
func tradeServer(t *testing.T, latest int64, rateLimitFirst bool) (*httptest.Server, *int32) {
	var calls int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if rateLimitFirst && n == 1 {
			writeJSON(w, http.StatusTooManyRequests, `{"message":"Rate limit exceeded"}`)
			return
		}
		before, _ := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		body := "["
		for id := after - 1; id > before; id-- {
			if id > latest {
				continue
			}
			if body != "[" {
				body += ","
			}
			body += fmt.Sprintf(`{"time":"2017-01-01T00:00:00Z","trade_id":%d,"price":"1","size":"1","side":"buy"}`, id)
		}
		writeJSON(w, http.StatusOK, body+"]")
	})
	return srv, &calls
}

func collect(t *testing.T, trades <-chan product.Trade, errc <-chan error) []int64 {
	t.Helper()
	ids := []int64{}
	for tr := range trades {
		ids = append(ids, tr.TradeID)
	}
	require.NoError(t, <-errc)
	return ids
}

func TestGetProductTradeStreamBounded(t *testing.T) {
	srv, _ := tradeServer(t, 1000, false)
	c := NewPublic(srv.URL)

	trades, errc := c.GetProductTradeStream(context.Background(), "BTC-USD", product.TradeStreamArgs{From: 10, To: 260})
	ids := collect(t, trades, errc)

	require.Len(t, ids, 249)
	assert.Equal(t, int64(11), ids[0])
	assert.Equal(t, int64(259), ids[len(ids)-1])
	for i := 1; i < len(ids); i++ {
		assert.Equal(t, ids[i-1]+1, ids[i])
	}
}

func TestGetProductTradeStreamStopAndEnd(t *testing.T) {
	srv, _ := tradeServer(t, 150, false)
	c := NewPublic(srv.URL)

	trades, errc := c.GetProductTradeStream(context.Background(), "BTC-USD", product.TradeStreamArgs{
		From: 0,
		Stop: func(tr product.Trade) bool { return tr.TradeID == 42 },
	})
	ids := collect(t, trades, errc)
	assert.Len(t, ids, 41)

	trades, errc = c.GetProductTradeStream(context.Background(), "BTC-USD", product.TradeStreamArgs{From: 0})
	ids = collect(t, trades, errc)
	assert.Len(t, ids, 150)
}

func TestGetProductTradeStreamRateLimited(t *testing.T) {
	srv, calls := tradeServer(t, 50, true)
	c := NewPublic(srv.URL, WithRateLimitWait(time.Millisecond))

	trades, errc := c.GetProductTradeStream(context.Background(), "BTC-USD", product.TradeStreamArgs{From: 0, To: 30})
	ids := collect(t, trades, errc)
	assert.Len(t, ids, 29)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestGetProductTradeStreamError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
	})
	trades, errc := NewPublic(srv.URL).GetProductTradeStream(context.Background(), "BTC-USD", product.TradeStreamArgs{From: 0})
	for range trades {
	}
	err := <-errc
	apiErr := &APIError{}
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
}
