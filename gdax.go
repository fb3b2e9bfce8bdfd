package gdax

import (
	"github.com/TTRSQ/gdax/config"
	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/interface/exchange"
	"github.com/TTRSQ/gdax/src/dummy"
	"github.com/TTRSQ/gdax/src/rest"
	"github.com/TTRSQ/gdax/src/ws"
	"github.com/shopspring/decimal"
)

// ExchangeKey ..
type ExchangeKey = exchange.Key

// this is factory of gdax clients. empty uri means production.

// PublicClient .. market data, no key.
func PublicClient(apiURI string, opts ...rest.Option) exchange.PublicClient {
	return rest.NewPublic(apiURI, opts...)
}

// AuthenticatedClient .. key required.
func AuthenticatedClient(key ExchangeKey, apiURI string, opts ...rest.Option) (exchange.AuthenticatedClient, error) {
	c, err := rest.NewPrivate(key, apiURI, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// WebsocketClient .. nil key subscribes unauthenticated.
func WebsocketClient(productIDs []string, wsURI string, key *ExchangeKey, opts ws.Options) (exchange.Stream, error) {
	c, err := ws.New(productIDs, wsURI, key, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Dummy .. paper trading, funded with balances.
func Dummy(balances map[base.Currency]decimal.Decimal) *dummy.Dummy {
	return dummy.New(balances)
}

// FromConfig builds the REST client cfg describes: authenticated when cfg
// carries a full key, public otherwise.
func FromConfig(cfg *config.Config, opts ...rest.Option) (exchange.PublicClient, error) {
	opts = append([]rest.Option{rest.WithTimeout(cfg.Timeout)}, opts...)
	if cfg.HasKey() {
		return AuthenticatedClient(cfg.Key, cfg.APIURI, opts...)
	}
	return rest.NewPublic(cfg.APIURI, opts...), nil
}
