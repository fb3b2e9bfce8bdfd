package execution

import (
	"errors"
	"net/url"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/exchange"
	"github.com/TTRSQ/gdax/domains/order/id"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/shopspring/decimal"
)

// Liquidity of a fill.
type Liquidity string

// Liquidity flags.
const (
	Maker Liquidity = "M"
	Taker Liquidity = "T"
)

// Fill is a completed (partial or full) execution of one of our orders.
type Fill struct {
	TradeID   int64           `json:"trade_id"`
	ProductID string          `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	Size      decimal.Decimal `json:"size"`
	OrderID   string          `json:"order_id"`
	CreatedAt time.Time       `json:"created_at"`
	Liquidity Liquidity       `json:"liquidity"`
	Fee       decimal.Decimal `json:"fee"`
	Settled   bool            `json:"settled"`
	Side      base.Side       `json:"side"`
}

// OrderGlobalID of the order this fill belongs to.
func (f Fill) OrderGlobalID() id.ID {
	return id.NewID(exchange.Name, f.ProductID, f.OrderID)
}

// Norm returns price and size.
func (f Fill) Norm() base.Norm {
	return base.Norm{Price: f.Price, Size: f.Size}
}

// ListArgs filters GET /fills.
type ListArgs struct {
	OrderID   string
	ProductID string
	Page      *page.Args
}

// Query encodes the args.
func (a ListArgs) Query() (url.Values, error) {
	if a.OrderID != "" && a.ProductID != "" {
		return nil, errors.New("fills: order_id and product_id are exclusive")
	}
	q := url.Values{}
	if a.OrderID != "" {
		q.Set("order_id", a.OrderID)
	}
	if a.ProductID != "" {
		q.Set("product_id", a.ProductID)
	}
	if err := page.Encode(a.Page, q); err != nil {
		return nil, err
	}
	return q, nil
}
