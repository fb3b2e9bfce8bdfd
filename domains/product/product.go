package product

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/util"
	"github.com/shopspring/decimal"
)

// Info is an entry of GET /products.
type Info struct {
	ID             string          `json:"id"`
	BaseCurrency   base.Currency   `json:"base_currency"`
	QuoteCurrency  base.Currency   `json:"quote_currency"`
	BaseMinSize    decimal.Decimal `json:"base_min_size"`
	BaseMaxSize    decimal.Decimal `json:"base_max_size"`
	QuoteIncrement decimal.Decimal `json:"quote_increment"`
	DisplayName    string          `json:"display_name"`
	MarginEnabled  bool            `json:"margin_enabled"`
}

// Ticker is the last trade and best bid/ask of a product.
type Ticker struct {
	TradeID json.Number     `json:"trade_id"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	Bid     decimal.Decimal `json:"bid"`
	Ask     decimal.Decimal `json:"ask"`
	Volume  decimal.Decimal `json:"volume"`
	Time    time.Time       `json:"time"`
}

// Trade is a public trade. Side is the maker side.
type Trade struct {
	Time    time.Time       `json:"time"`
	TradeID int64           `json:"trade_id"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	Side    base.Side       `json:"side"`
}

// Candle is one bucket of GET /products/{id}/candles.
type Candle struct {
	Time   time.Time
	Low    decimal.Decimal
	High   decimal.Decimal
	Open   decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// UnmarshalJSON decodes [time, low, high, open, close, volume].
func (c *Candle) UnmarshalJSON(data []byte) error {
	raw := []json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 6 {
		return fmt.Errorf("candle: want 6 elements, got %d", len(raw))
	}
	var epoch int64
	if err := json.Unmarshal(raw[0], &epoch); err != nil {
		return fmt.Errorf("candle time: %w", err)
	}
	c.Time = time.Unix(epoch, 0).UTC()
	for i, dst := range []*decimal.Decimal{&c.Low, &c.High, &c.Open, &c.Close, &c.Volume} {
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("candle field %d: %w", i+1, err)
		}
	}
	return nil
}

// MarshalJSON encodes the array form.
func (c Candle) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{
		c.Time.Unix(),
		c.Low.InexactFloat64(),
		c.High.InexactFloat64(),
		c.Open.InexactFloat64(),
		c.Close.InexactFloat64(),
		c.Volume.InexactFloat64(),
	})
}

// HistoricRatesArgs of GET /products/{id}/candles. Zero Start/End let the
// exchange pick the most recent range.
type HistoricRatesArgs struct {
	Start       time.Time
	End         time.Time
	Granularity int `validate:"required,oneof=60 300 900 3600 21600 86400"`
}

// Query validates and encodes the args.
func (a HistoricRatesArgs) Query() (url.Values, error) {
	if err := util.Validator().Struct(a); err != nil {
		return nil, fmt.Errorf("historic rates args: %w", err)
	}
	if !a.Start.IsZero() && !a.End.IsZero() && a.End.Before(a.Start) {
		return nil, fmt.Errorf("historic rates args: end %s before start %s", a.End, a.Start)
	}
	q := url.Values{}
	if !a.Start.IsZero() {
		q.Set("start", a.Start.UTC().Format(time.RFC3339))
	}
	if !a.End.IsZero() {
		q.Set("end", a.End.UTC().Format(time.RFC3339))
	}
	q.Set("granularity", strconv.Itoa(a.Granularity))
	return q, nil
}

// Stats is the 24 hour summary of a product.
type Stats struct {
	Open        decimal.Decimal `json:"open"`
	High        decimal.Decimal `json:"high"`
	Low         decimal.Decimal `json:"low"`
	Volume      decimal.Decimal `json:"volume"`
	Last        decimal.Decimal `json:"last"`
	Volume30Day decimal.Decimal `json:"volume_30day"`
}

// TradeStreamArgs bounds a trade stream. From is exclusive. With To set the
// stream ends once the window reaches it; Stop, when set, ends the stream at
// the first trade for which it returns true.
type TradeStreamArgs struct {
	From int64
	To   int64
	Stop func(Trade) bool
}
