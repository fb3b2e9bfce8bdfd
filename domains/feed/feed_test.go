package feed

import (
	"encoding/json"
	"testing"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"l2update","product_id":"BTC-USD","time":"2017-09-02T17:05:49.250Z","changes":[["buy","10101.80000000","0.162567"],["sell","10102","0"]]}`))
	require.NoError(t, err)
	assert.Equal(t, TypeL2Update, msg.Type)
	require.Len(t, msg.Changes, 2)
	assert.Equal(t, base.Buy, msg.Changes[0].Side)
	assert.Equal(t, "10101.8", msg.Changes[0].Price.String())
	assert.True(t, msg.Changes[1].Size.IsZero())
	assert.NotEmpty(t, msg.Raw)

	msg, err = Decode([]byte(`{"type":"snapshot","product_id":"BTC-USD","bids":[["10101.10","0.45054140"]],"asks":[["10102.55","0.57753524"]]}`))
	require.NoError(t, err)
	require.Len(t, msg.Bids, 1)
	assert.Equal(t, "10101.1", msg.Bids[0][0].String())
	assert.Equal(t, "0.57753524", msg.Asks[0][1].String())

	msg, err = Decode([]byte(`{"type":"received","order_id":"d50ec984","order_type":"market","side":"buy","funds":"3000.234"}`))
	require.NoError(t, err)
	assert.True(t, msg.Funds.Valid)
	assert.Equal(t, "3000.234", msg.Funds.Decimal.String())

	_, err = Decode([]byte(`{"type":"l2update","changes":[["buy","1"]]}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestRequestJSON(t *testing.T) {
	data, err := json.Marshal(Request{Type: "subscribe", ProductIDs: []string{"BTC-USD"}, Channels: []string{Ticker, Heartbeat}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subscribe","product_ids":["BTC-USD"],"channels":["ticker","heartbeat"]}`, string(data))
}
