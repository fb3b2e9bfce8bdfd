package feed

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/product"
	"github.com/shopspring/decimal"
)

// Channel names.
const (
	Full      = "full"
	Level2    = "level2"
	Ticker    = "ticker"
	Matches   = "matches"
	Heartbeat = "heartbeat"
	User      = "user"
)

// Message types.
const (
	TypeSubscriptions = "subscriptions"
	TypeHeartbeat     = "heartbeat"
	TypeTicker        = "ticker"
	TypeSnapshot      = "snapshot"
	TypeL2Update      = "l2update"
	TypeReceived      = "received"
	TypeOpen          = "open"
	TypeDone          = "done"
	TypeMatch         = "match"
	TypeLastMatch     = "last_match"
	TypeChange        = "change"
	TypeActivate      = "activate"
	TypeError         = "error"
)

// Channel as echoed by a subscriptions message.
type Channel struct {
	Name       string   `json:"name"`
	ProductIDs []string `json:"product_ids"`
}

// Request is a subscribe or unsubscribe request. Auth fields are set only
// for authenticated feeds.
type Request struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
	Signature  string   `json:"signature,omitempty"`
	Key        string   `json:"key,omitempty"`
	Passphrase string   `json:"passphrase,omitempty"`
	Timestamp  string   `json:"timestamp,omitempty"`
}

// Change is one row of an l2update: [side, price, size].
type Change struct {
	Side  base.Side
	Price decimal.Decimal
	Size  decimal.Decimal
}

// UnmarshalJSON decodes [side, price, size].
func (c *Change) UnmarshalJSON(data []byte) error {
	raw := [3]string{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	price, err := decimal.NewFromString(raw[1])
	if err != nil {
		return err
	}
	size, err := decimal.NewFromString(raw[2])
	if err != nil {
		return err
	}
	c.Side, c.Price, c.Size = base.Side(raw[0]), price, size
	return nil
}

// Message is any message of the feed, discriminated by Type. Fields not
// carried by a given type stay zero; Raw keeps the original bytes.
type Message struct {
	Type      string    `json:"type"`
	Sequence  int64     `json:"sequence"`
	ProductID string    `json:"product_id"`
	Time      time.Time `json:"time"`

	// full / matches / user
	OrderID       string              `json:"order_id"`
	ClientOID     string              `json:"client_oid"`
	TradeID       int64               `json:"trade_id"`
	MakerOrderID  string              `json:"maker_order_id"`
	TakerOrderID  string              `json:"taker_order_id"`
	Side          base.Side           `json:"side"`
	OrderType     string              `json:"order_type"`
	Price         decimal.Decimal     `json:"price"`
	Size          decimal.Decimal     `json:"size"`
	Funds         decimal.NullDecimal `json:"funds"`
	RemainingSize decimal.Decimal     `json:"remaining_size"`
	NewSize       decimal.Decimal     `json:"new_size"`
	OldSize       decimal.Decimal     `json:"old_size"`
	Reason        string              `json:"reason"`

	// ticker
	BestBid   decimal.Decimal `json:"best_bid"`
	BestAsk   decimal.Decimal `json:"best_ask"`
	Volume24h decimal.Decimal `json:"volume_24h"`
	Open24h   decimal.Decimal `json:"open_24h"`
	LastSize  decimal.Decimal `json:"last_size"`

	// level2
	Bids    [][2]decimal.Decimal `json:"bids"`
	Asks    [][2]decimal.Decimal `json:"asks"`
	Changes []Change             `json:"changes"`

	// heartbeat
	LastTradeID int64 `json:"last_trade_id"`

	// subscriptions
	Channels []Channel `json:"channels"`

	// error
	Message string `json:"message"`

	Raw json.RawMessage `json:"-"`
}

// Decode parses a feed message and keeps the raw bytes.
func Decode(data []byte) (Message, error) {
	msg := Message{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	msg.Raw = append(json.RawMessage(nil), data...)
	return msg, nil
}

// ProductTicker converts a ticker message into the REST ticker shape.
func (m Message) ProductTicker() product.Ticker {
	return product.Ticker{
		TradeID: json.Number(strconv.FormatInt(m.TradeID, 10)),
		Price:   m.Price,
		Size:    m.LastSize,
		Bid:     m.BestBid,
		Ask:     m.BestAsk,
		Volume:  m.Volume24h,
		Time:    m.Time,
	}
}
