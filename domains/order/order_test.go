package order

import (
	"encoding/json"
	"testing"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, v interface{}) map[string]json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	ret := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &ret))
	return ret
}

func TestMarketOrderJSON(t *testing.T) {
	o := MarketOrder{
		Base: Base{Side: base.Buy, ProductID: "BTC-USD"},
		Size: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
	}
	got := fields(t, o)
	assert.JSONEq(t, `"market"`, string(got["type"]))
	assert.JSONEq(t, `"0.5"`, string(got["size"]))
	assert.JSONEq(t, `null`, string(got["funds"]))
	assert.NotContains(t, got, "price")
	assert.NotContains(t, got, "time_in_force")
	assert.NotContains(t, got, "client_oid")
}

func TestLimitOrderJSON(t *testing.T) {
	o := LimitOrder{
		Base:        Base{Side: base.Sell, ProductID: "ETH-USD", ClientOID: "9a2cf4a8-8a2e-4d0c-9c1b-3f1d1f9b1d2e"},
		Price:       decimal.RequireFromString("300.25"),
		Size:        decimal.RequireFromString("1"),
		TimeInForce: GTT,
		CancelAfter: Hour,
		PostOnly:    true,
	}
	require.NoError(t, o.Validate())
	got := fields(t, o)
	assert.JSONEq(t, `"limit"`, string(got["type"]))
	assert.JSONEq(t, `"300.25"`, string(got["price"]))
	assert.JSONEq(t, `"1"`, string(got["size"]))
	assert.JSONEq(t, `"GTT"`, string(got["time_in_force"]))
	assert.JSONEq(t, `"hour"`, string(got["cancel_after"]))
	assert.JSONEq(t, `true`, string(got["post_only"]))

	plain := fields(t, LimitOrder{Base: Base{Side: base.Buy, ProductID: "ETH-USD"}, Price: decimal.NewFromInt(1), Size: decimal.NewFromInt(1)})
	assert.NotContains(t, plain, "cancel_after")
	assert.NotContains(t, plain, "post_only")
	assert.NotContains(t, plain, "time_in_force")
}

func TestStopOrderJSON(t *testing.T) {
	got := fields(t, StopOrder{
		Base:  Base{Side: base.Buy, ProductID: "BTC-USD"},
		Size:  decimal.NewFromInt(1),
		Funds: decimal.NewFromInt(100),
	})
	assert.JSONEq(t, `"stop"`, string(got["type"]))
	assert.JSONEq(t, `"100"`, string(got["funds"]))
}

func TestValidate(t *testing.T) {
	one := decimal.NewFromInt(1)
	b := Base{Side: base.Buy, ProductID: "BTC-USD"}
	tests := []struct {
		name   string
		params Params
		ok     bool
	}{
		{"limit", LimitOrder{Base: b, Price: one, Size: one}, true},
		{"limit no price", LimitOrder{Base: b, Size: one}, false},
		{"limit negative size", LimitOrder{Base: b, Price: one, Size: one.Neg()}, false},
		{"limit no side", LimitOrder{Base: Base{ProductID: "BTC-USD"}, Price: one, Size: one}, false},
		{"limit bad side", LimitOrder{Base: Base{Side: "hold", ProductID: "BTC-USD"}, Price: one, Size: one}, false},
		{"limit no product", LimitOrder{Base: Base{Side: base.Buy}, Price: one, Size: one}, false},
		{"limit bad tif", LimitOrder{Base: b, Price: one, Size: one, TimeInForce: "GTD"}, false},
		{"cancel_after without GTT", LimitOrder{Base: b, Price: one, Size: one, CancelAfter: Minute}, false},
		{"post_only with IOC", LimitOrder{Base: b, Price: one, Size: one, PostOnly: true, TimeInForce: IOC}, false},
		{"bad client_oid", LimitOrder{Base: Base{Side: base.Buy, ProductID: "BTC-USD", ClientOID: "abc"}, Price: one, Size: one}, false},
		{"bad stp", LimitOrder{Base: Base{Side: base.Buy, ProductID: "BTC-USD", STP: "xx"}, Price: one, Size: one}, false},
		{"stp", LimitOrder{Base: Base{Side: base.Buy, ProductID: "BTC-USD", STP: CancelOldest}, Price: one, Size: one}, true},
		{"market size", MarketOrder{Base: b, Size: decimal.NewNullDecimal(one)}, true},
		{"market funds", MarketOrder{Base: b, Funds: decimal.NewNullDecimal(one)}, true},
		{"market neither", MarketOrder{Base: b}, false},
		{"market zero funds", MarketOrder{Base: b, Funds: decimal.NewNullDecimal(decimal.Zero)}, false},
		{"stop", StopOrder{Base: b, Size: one, Funds: one}, true},
		{"stop no funds", StopOrder{Base: b, Size: one}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestWithSide(t *testing.T) {
	p := MarketOrder{Base: Base{ProductID: "BTC-USD"}}.WithSide(base.Sell)
	assert.Equal(t, base.Sell, p.OrderSide())
	assert.Equal(t, TypeMarket, p.OrderType())
	assert.Equal(t, "BTC-USD", p.Product())
}

func TestStatusValidation(t *testing.T) {
	for _, s := range []Status{Received, Open, Done} {
		assert.NoError(t, Result{BaseInfo: BaseInfo{Status: s}}.Validate())
		assert.NoError(t, Info{BaseInfo: BaseInfo{Status: s}}.Validate())
	}
	assert.Error(t, Result{BaseInfo: BaseInfo{Status: Pending}}.Validate())
	assert.NoError(t, Info{BaseInfo: BaseInfo{Status: Pending}}.Validate())
	assert.Error(t, Info{BaseInfo: BaseInfo{Status: "rejected"}}.Validate())
}

func TestInfoDecode(t *testing.T) {
	raw := `{
		"id": "d0c5340b-6d6c-49d9-b567-48c4bfca13d2",
		"price": "0.10000000",
		"size": "0.01000000",
		"product_id": "BTC-USD",
		"side": "buy",
		"stp": "dc",
		"type": "limit",
		"created_at": "2016-12-08T20:02:28.53864Z",
		"post_only": false,
		"fill_fees": "0.0000000000000000",
		"filled_size": "0.00000000",
		"executed_value": "0.0000000000000000",
		"status": "pending",
		"settled": false
	}`
	info := Info{}
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	require.NoError(t, info.Validate())
	assert.Equal(t, "0.1", info.Price.String())
	assert.Equal(t, DecrementAndCancel, info.STP)
	assert.Nil(t, info.DoneAt)
	assert.Equal(t, "gdax::BTC-USD::d0c5340b-6d6c-49d9-b567-48c4bfca13d2", info.GlobalID().ToString())
}

func TestListArgsQuery(t *testing.T) {
	q, err := ListArgs{Status: []string{"open", "pending"}, ProductID: "BTC-USD", Page: &page.Args{Limit: 10}}.Query()
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "pending"}, q["status"])
	assert.Equal(t, "BTC-USD", q.Get("product_id"))
	assert.Equal(t, "10", q.Get("limit"))

	_, err = ListArgs{Status: []string{"done"}}.Query()
	assert.ErrorIs(t, err, ErrInvalidParams)
	_, err = ListArgs{Page: &page.Args{}}.Query()
	assert.ErrorIs(t, err, page.ErrNoBound)
}
