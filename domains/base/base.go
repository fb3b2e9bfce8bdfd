package base

import (
	"time"

	"github.com/shopspring/decimal"
)

// Norm norm of something (e.g. Order, Level, Fill)
type Norm struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// Side of an order or trade.
type Side string

// Sides.
const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Currency is a currency code. The named values are the ones the exchange
// listed at the time; any other code still decodes.
type Currency string

// Currencies.
const (
	USD Currency = "USD"
	BTC Currency = "BTC"
	LTC Currency = "LTC"
	ETH Currency = "ETH"
	B2X Currency = "B2X"
)

// CurrencyInfo is an entry of GET /currencies.
type CurrencyInfo struct {
	ID      Currency        `json:"id"`
	Name    string          `json:"name"`
	MinSize decimal.Decimal `json:"min_size"`
}

// ServerTime is the response of GET /time.
type ServerTime struct {
	ISO   time.Time `json:"iso"`
	Epoch float64   `json:"epoch"`
}
