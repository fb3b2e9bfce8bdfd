package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/board"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/domains/product"
)

// Public is the unauthenticated market data client.
type Public struct {
	*transport
}

// NewPublic returns a public client for apiURI, production when empty.
func NewPublic(apiURI string, opts ...Option) *Public {
	return &Public{transport: newTransport(apiURI, buildOptions(opts))}
}

// ExchangeName returns "gdax".
func (p *Public) ExchangeName() string {
	return p.name
}

// GetProducts lists tradeable products.
func (p *Public) GetProducts(ctx context.Context) ([]product.Info, error) {
	ret := []product.Info{}
	_, err := p.request(ctx, nil, http.MethodGet, "/products", nil, nil, &ret)
	return ret, err
}

// GetProductOrderBook returns the book at level 1 (best bid/ask), 2 (top 50
// aggregated) or 3 (full, per order). Level 0 means 1.
func (p *Public) GetProductOrderBook(ctx context.Context, productID string, level int) (board.Book, error) {
	if level == 0 {
		level = 1
	}
	if level < 1 || level > 3 {
		return board.Book{}, fmt.Errorf("order book level %d out of range 1..3", level)
	}
	q := url.Values{"level": {strconv.Itoa(level)}}
	ret := board.Book{}
	_, err := p.request(ctx, nil, http.MethodGet, productPath(productID, "/book"), q, nil, &ret)
	return ret, err
}

// GetProductTicker returns the last trade and best bid/ask.
func (p *Public) GetProductTicker(ctx context.Context, productID string) (product.Ticker, error) {
	ret := product.Ticker{}
	_, err := p.request(ctx, nil, http.MethodGet, productPath(productID, "/ticker"), nil, nil, &ret)
	return ret, err
}

// GetProductTrades returns one page of trades, newest first.
func (p *Public) GetProductTrades(ctx context.Context, productID string, args *page.Args) ([]product.Trade, page.Cursor, error) {
	q := url.Values{}
	if err := page.Encode(args, q); err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []product.Trade{}
	cursor, err := p.request(ctx, nil, http.MethodGet, productPath(productID, "/trades"), q, nil, &ret)
	return ret, cursor, err
}

// GetProductTradeStream pages through trades in windows of page.MaxLimit ids.
// An empty window ends the stream.
func (p *Public) GetProductTradeStream(ctx context.Context, productID string, args product.TradeStreamArgs) (<-chan product.Trade, <-chan error) {
	trades := make(chan product.Trade)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(trades)

		from := args.From
		for {
			after := from + page.MaxLimit + 1
			last := false
			if args.To > 0 && args.To <= after {
				after = args.To
				last = true
			}

			data, _, err := p.GetProductTrades(ctx, productID, &page.Args{Before: from, After: after, Limit: page.MaxLimit})
			if err != nil {
				apiErr := &APIError{}
				if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
					p.logger.Debug("trade stream rate limited", "product_id", productID, "from", from)
					select {
					case <-time.After(p.retryWait):
						continue
					case <-ctx.Done():
						errc <- ctx.Err()
						return
					}
				}
				errc <- err
				return
			}
			if len(data) == 0 {
				return
			}

			for i := len(data) - 1; i >= 0; i-- {
				if args.Stop != nil && args.Stop(data[i]) {
					return
				}
				select {
				case trades <- data[i]:
				case <-ctx.Done():
					errc <- ctx.Err()
					return
				}
			}
			if last {
				return
			}
			from += page.MaxLimit
		}
	}()

	return trades, errc
}

// GetProductHistoricRates returns candles, newest first.
func (p *Public) GetProductHistoricRates(ctx context.Context, productID string, args product.HistoricRatesArgs) ([]product.Candle, error) {
	q, err := args.Query()
	if err != nil {
		return nil, err
	}
	ret := []product.Candle{}
	_, err = p.request(ctx, nil, http.MethodGet, productPath(productID, "/candles"), q, nil, &ret)
	return ret, err
}

// GetProduct24HrStats returns the 24 hour summary.
func (p *Public) GetProduct24HrStats(ctx context.Context, productID string) (product.Stats, error) {
	ret := product.Stats{}
	_, err := p.request(ctx, nil, http.MethodGet, productPath(productID, "/stats"), nil, nil, &ret)
	return ret, err
}

// GetCurrencies lists known currencies.
func (p *Public) GetCurrencies(ctx context.Context) ([]base.CurrencyInfo, error) {
	ret := []base.CurrencyInfo{}
	_, err := p.request(ctx, nil, http.MethodGet, "/currencies", nil, nil, &ret)
	return ret, err
}

// GetTime returns the exchange clock.
func (p *Public) GetTime(ctx context.Context) (base.ServerTime, error) {
	ret := base.ServerTime{}
	_, err := p.request(ctx, nil, http.MethodGet, "/time", nil, nil, &ret)
	return ret, err
}
