package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/exchange"
	"github.com/TTRSQ/gdax/domains/order/id"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/util"
	"github.com/shopspring/decimal"
)

// ErrInvalidParams is wrapped by every order validation failure.
var ErrInvalidParams = errors.New("invalid order params")

// Type discriminates order params and records.
type Type string

// Order types.
const (
	TypeLimit  Type = "limit"
	TypeMarket Type = "market"
	TypeStop   Type = "stop"
)

// STP self-trade prevention flag.
type STP string

// Self-trade prevention policies.
const (
	DecrementAndCancel STP = "dc"
	CancelOldest       STP = "co"
	CancelNewest       STP = "cn"
	CancelBoth         STP = "cb"
)

// TimeInForce of a limit order.
type TimeInForce string

// Time in force policies.
const (
	GTC TimeInForce = "GTC"
	GTT TimeInForce = "GTT"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
)

// CancelAfter is the lifetime of a GTT order.
type CancelAfter string

// Lifetimes.
const (
	Minute CancelAfter = "min"
	Hour   CancelAfter = "hour"
	Day    CancelAfter = "day"
)

// Status of an order.
type Status string

// Statuses.
const (
	Received Status = "received"
	Open     Status = "open"
	Done     Status = "done"
	Pending  Status = "pending"
)

// Params is one of MarketOrder, LimitOrder or StopOrder.
type Params interface {
	OrderType() Type
	Product() string
	OrderSide() base.Side
	Validate() error
	// WithSide returns a copy of the params with side set.
	WithSide(side base.Side) Params
	params()
}

// Base fields shared by every order type.
type Base struct {
	Side      base.Side `json:"side" validate:"required,oneof=buy sell"`
	ProductID string    `json:"product_id" validate:"required"`
	ClientOID string    `json:"client_oid,omitempty" validate:"omitempty,uuid"`
	STP       STP       `json:"stp,omitempty" validate:"omitempty,oneof=dc co cn cb"`
}

// Product returns product_id.
func (b Base) Product() string { return b.ProductID }

// OrderSide returns side.
func (b Base) OrderSide() base.Side { return b.Side }

func (b Base) params() {}

// LimitOrder requires price and size.
type LimitOrder struct {
	Base
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Size        decimal.Decimal `json:"size" validate:"gt=0"`
	TimeInForce TimeInForce     `json:"time_in_force,omitempty" validate:"omitempty,oneof=GTC GTT IOC FOK"`
	CancelAfter CancelAfter     `json:"cancel_after,omitempty" validate:"omitempty,oneof=min hour day"`
	PostOnly    bool            `json:"post_only,omitempty"`
}

// OrderType returns TypeLimit.
func (o LimitOrder) OrderType() Type { return TypeLimit }

// WithSide implements Params.
func (o LimitOrder) WithSide(side base.Side) Params {
	o.Side = side
	return o
}

// Validate implements Params.
func (o LimitOrder) Validate() error {
	if err := util.Validator().Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if o.CancelAfter != "" && o.TimeInForce != GTT {
		return fmt.Errorf("%w: cancel_after requires time_in_force %s", ErrInvalidParams, GTT)
	}
	if o.PostOnly && (o.TimeInForce == IOC || o.TimeInForce == FOK) {
		return fmt.Errorf("%w: post_only is invalid with time_in_force %s", ErrInvalidParams, o.TimeInForce)
	}
	return nil
}

// MarshalJSON always writes type "limit".
func (o LimitOrder) MarshalJSON() ([]byte, error) {
	type plain LimitOrder
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeLimit, plain(o)})
}

// MarketOrder takes size or funds. Both are always sent, null when unset.
// Without funds the exchange holds the whole balance until the order fills.
type MarketOrder struct {
	Base
	Size  decimal.NullDecimal `json:"size" validate:"omitempty,gt=0"`
	Funds decimal.NullDecimal `json:"funds" validate:"omitempty,gt=0"`
}

// OrderType returns TypeMarket.
func (o MarketOrder) OrderType() Type { return TypeMarket }

// WithSide implements Params.
func (o MarketOrder) WithSide(side base.Side) Params {
	o.Side = side
	return o
}

// Validate implements Params.
func (o MarketOrder) Validate() error {
	if err := util.Validator().Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if !o.Size.Valid && !o.Funds.Valid {
		return fmt.Errorf("%w: market order needs size or funds", ErrInvalidParams)
	}
	for name, v := range map[string]decimal.NullDecimal{"size": o.Size, "funds": o.Funds} {
		if v.Valid && !v.Decimal.IsPositive() {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidParams, name)
		}
	}
	return nil
}

// MarshalJSON always writes type "market".
func (o MarketOrder) MarshalJSON() ([]byte, error) {
	type plain MarketOrder
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeMarket, plain(o)})
}

// StopOrder requires size and funds.
type StopOrder struct {
	Base
	Size  decimal.Decimal `json:"size" validate:"gt=0"`
	Funds decimal.Decimal `json:"funds" validate:"gt=0"`
}

// OrderType returns TypeStop.
func (o StopOrder) OrderType() Type { return TypeStop }

// WithSide implements Params.
func (o StopOrder) WithSide(side base.Side) Params {
	o.Side = side
	return o
}

// Validate implements Params.
func (o StopOrder) Validate() error {
	if err := util.Validator().Struct(o); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}

// MarshalJSON always writes type "stop".
func (o StopOrder) MarshalJSON() ([]byte, error) {
	type plain StopOrder
	return json.Marshal(struct {
		Type Type `json:"type"`
		plain
	}{TypeStop, plain(o)})
}

// BaseInfo fields shared by Result and Info.
type BaseInfo struct {
	ID            string          `json:"id"`
	Price         decimal.Decimal `json:"price"`
	Size          decimal.Decimal `json:"size"`
	ProductID     string          `json:"product_id"`
	Side          base.Side       `json:"side"`
	STP           STP             `json:"stp"`
	Type          Type            `json:"type"`
	CreatedAt     time.Time       `json:"created_at"`
	PostOnly      bool            `json:"post_only"`
	FillFees      decimal.Decimal `json:"fill_fees"`
	FilledSize    decimal.Decimal `json:"filled_size"`
	Status        Status          `json:"status"`
	Settled       bool            `json:"settled"`
	ExecutedValue decimal.Decimal `json:"executed_value"`
}

// GlobalID of the order.
func (b BaseInfo) GlobalID() id.ID {
	return id.NewID(exchange.Name, b.ProductID, b.ID)
}

// Result is returned by order placement.
type Result struct {
	BaseInfo
	TimeInForce TimeInForce `json:"time_in_force"`
}

// Validate checks that status is one of received, open, done.
func (r Result) Validate() error {
	switch r.Status {
	case Received, Open, Done:
		return nil
	}
	return fmt.Errorf("order %s: unexpected result status %q", r.ID, r.Status)
}

// Info is returned by order lookups.
type Info struct {
	BaseInfo
	Funds          decimal.Decimal `json:"funds"`
	SpecifiedFunds decimal.Decimal `json:"specified_funds"`
	DoneAt         *time.Time      `json:"done_at,omitempty"`
}

// Validate checks that status is one of received, open, done, pending.
func (i Info) Validate() error {
	switch i.Status {
	case Received, Open, Done, Pending:
		return nil
	}
	return fmt.Errorf("order %s: unexpected status %q", i.ID, i.Status)
}

// ListArgs filters GET /orders.
type ListArgs struct {
	Status    []string `validate:"dive,oneof=open pending active all"`
	ProductID string
	Page      *page.Args
}

// Query validates the args and encodes them.
func (a ListArgs) Query() (url.Values, error) {
	if err := util.Validator().Struct(a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	q := url.Values{}
	for _, s := range a.Status {
		q.Add("status", s)
	}
	if a.ProductID != "" {
		q.Set("product_id", a.ProductID)
	}
	if err := page.Encode(a.Page, q); err != nil {
		return nil, err
	}
	return q, nil
}
