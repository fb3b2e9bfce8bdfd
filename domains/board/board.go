package board

import (
	"encoding/json"
	"fmt"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/shopspring/decimal"
)

// Level is one row of a REST order book.
// Level 1 and 2 books carry NumOrders, level 3 books carry OrderID.
type Level struct {
	base.Norm
	NumOrders int
	OrderID   string
}

// UnmarshalJSON decodes [price, size, num_orders|order_id].
func (l *Level) UnmarshalJSON(data []byte) error {
	raw := []json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("book level: want at least 2 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &l.Price); err != nil {
		return fmt.Errorf("book level price: %w", err)
	}
	if err := json.Unmarshal(raw[1], &l.Size); err != nil {
		return fmt.Errorf("book level size: %w", err)
	}
	if len(raw) < 3 {
		return nil
	}
	if err := json.Unmarshal(raw[2], &l.NumOrders); err == nil {
		return nil
	}
	return json.Unmarshal(raw[2], &l.OrderID)
}

// Book is the response of GET /products/{id}/book.
type Book struct {
	Sequence int64   `json:"sequence"`
	Bids     []Level `json:"bids"`
	Asks     []Level `json:"asks"`
}

// Board converts the book into an aggregated Board.
func (b Book) Board(productID string) Board {
	ret := Board{Symbol: productID}
	for _, v := range b.Asks {
		ret.Asks = append(ret.Asks, v.Norm)
	}
	for _, v := range b.Bids {
		ret.Bids = append(ret.Bids, v.Norm)
	}
	ret.MidPrice = midPrice(ret.Asks, ret.Bids)
	return ret
}

// Board list of asks and bids, best first.
type Board struct {
	Symbol   string
	MidPrice decimal.Decimal
	Asks     []base.Norm
	Bids     []base.Norm
}

// BestAsk returns the lowest ask, false when the ask side is empty.
func (b Board) BestAsk() (base.Norm, bool) {
	if len(b.Asks) == 0 {
		return base.Norm{}, false
	}
	return b.Asks[0], true
}

// BestBid returns the highest bid, false when the bid side is empty.
func (b Board) BestBid() (base.Norm, bool) {
	if len(b.Bids) == 0 {
		return base.Norm{}, false
	}
	return b.Bids[0], true
}

func midPrice(asks, bids []base.Norm) decimal.Decimal {
	switch {
	case len(asks) > 0 && len(bids) > 0:
		return asks[0].Price.Add(bids[0].Price).Div(decimal.NewFromInt(2))
	case len(asks) > 0:
		return asks[0].Price
	case len(bids) > 0:
		return bids[0].Price
	}
	return decimal.Zero
}

// New builds a Board from sides already sorted best first.
func New(symbol string, asks, bids []base.Norm) Board {
	return Board{
		Symbol:   symbol,
		MidPrice: midPrice(asks, bids),
		Asks:     asks,
		Bids:     bids,
	}
}
