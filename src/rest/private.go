package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/TTRSQ/gdax/domains/account"
	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/execution"
	"github.com/TTRSQ/gdax/domains/funding"
	"github.com/TTRSQ/gdax/domains/order"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/domains/transfer"
	"github.com/TTRSQ/gdax/interface/exchange"
	"github.com/TTRSQ/gdax/src/auth"
)

// Private is the authenticated client. It embeds the public client.
type Private struct {
	*Public
	signer auth.Signer
}

// NewPrivate returns an authenticated client for apiURI, production when empty.
// Requests are signed with the key unless WithSigner is given.
func NewPrivate(key exchange.Key, apiURI string, opts ...Option) (*Private, error) {
	o := buildOptions(opts)
	signer := o.signer
	if signer == nil {
		hs, err := auth.NewHMACSigner(key)
		if err != nil {
			return nil, err
		}
		hs.SetClock(o.clock)
		signer = hs
	}
	return &Private{
		Public: &Public{transport: newTransport(apiURI, o)},
		signer: signer,
	}, nil
}

func (c *Private) get(ctx context.Context, path string, q url.Values, out interface{}) (page.Cursor, error) {
	return c.request(ctx, c.signer, http.MethodGet, path, q, nil, out)
}

func (c *Private) post(ctx context.Context, path string, body, out interface{}) error {
	_, err := c.request(ctx, c.signer, http.MethodPost, path, nil, body, out)
	return err
}

func (c *Private) delete(ctx context.Context, path string, q url.Values, out interface{}) error {
	_, err := c.request(ctx, c.signer, http.MethodDelete, path, q, nil, out)
	return err
}

func accountPath(accountID, suffix string) string {
	return "/accounts/" + url.PathEscape(accountID) + suffix
}

// GetCoinbaseAccounts lists linked Coinbase accounts.
func (c *Private) GetCoinbaseAccounts(ctx context.Context) ([]account.CoinbaseAccount, error) {
	ret := []account.CoinbaseAccount{}
	_, err := c.get(ctx, "/coinbase-accounts", nil, &ret)
	return ret, err
}

// GetAccounts lists trading accounts.
func (c *Private) GetAccounts(ctx context.Context) ([]account.Account, error) {
	ret := []account.Account{}
	_, err := c.get(ctx, "/accounts", nil, &ret)
	return ret, err
}

// GetAccount returns one trading account.
func (c *Private) GetAccount(ctx context.Context, accountID string) (account.Account, error) {
	ret := account.Account{}
	_, err := c.get(ctx, accountPath(accountID, ""), nil, &ret)
	return ret, err
}

// GetAccountHistory returns one page of the account ledger.
func (c *Private) GetAccountHistory(ctx context.Context, accountID string, args *page.Args) ([]account.LedgerEntry, page.Cursor, error) {
	q := url.Values{}
	if err := page.Encode(args, q); err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []account.LedgerEntry{}
	cursor, err := c.get(ctx, accountPath(accountID, "/ledger"), q, &ret)
	return ret, cursor, err
}

// GetAccountHolds returns one page of the holds on an account.
func (c *Private) GetAccountHolds(ctx context.Context, accountID string, args *page.Args) ([]account.Hold, page.Cursor, error) {
	q := url.Values{}
	if err := page.Encode(args, q); err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []account.Hold{}
	cursor, err := c.get(ctx, accountPath(accountID, "/holds"), q, &ret)
	return ret, cursor, err
}

// Buy places params as a buy order.
func (c *Private) Buy(ctx context.Context, params order.Params) (order.Result, error) {
	return c.PlaceOrder(ctx, params.WithSide(base.Buy))
}

// Sell places params as a sell order.
func (c *Private) Sell(ctx context.Context, params order.Params) (order.Result, error) {
	return c.PlaceOrder(ctx, params.WithSide(base.Sell))
}

// PlaceOrder validates params and submits them.
func (c *Private) PlaceOrder(ctx context.Context, params order.Params) (order.Result, error) {
	if err := params.Validate(); err != nil {
		return order.Result{}, err
	}
	ret := order.Result{}
	if err := c.post(ctx, "/orders", params, &ret); err != nil {
		return order.Result{}, err
	}
	if err := ret.Validate(); err != nil {
		c.logger.Warn("order placed with unexpected status", "order_id", ret.ID, "status", ret.Status)
	}
	c.logger.Debug("order placed", "order_id", ret.ID, "product_id", ret.ProductID, "type", ret.Type, "side", ret.Side)
	return ret, nil
}

// CancelOrder cancels one order.
func (c *Private) CancelOrder(ctx context.Context, orderID string) error {
	return c.delete(ctx, "/orders/"+url.PathEscape(orderID), nil, nil)
}

// CancelAllOrders repeats the bulk cancel until the exchange reports
// nothing left, optionally restricted to one product.
func (c *Private) CancelAllOrders(ctx context.Context, productID string) ([]string, error) {
	q := url.Values{}
	if productID != "" {
		q.Set("product_id", productID)
	}
	ids := []string{}
	for {
		batch := []string{}
		if err := c.delete(ctx, "/orders", q, &batch); err != nil {
			return ids, err
		}
		if len(batch) == 0 {
			return ids, nil
		}
		ids = append(ids, batch...)
	}
}

// GetOrders returns one page of orders.
func (c *Private) GetOrders(ctx context.Context, args order.ListArgs) ([]order.Info, page.Cursor, error) {
	q, err := args.Query()
	if err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []order.Info{}
	cursor, err := c.get(ctx, "/orders", q, &ret)
	if err != nil {
		return nil, page.Cursor{}, err
	}
	for _, o := range ret {
		if err := o.Validate(); err != nil {
			c.logger.Warn("order with unexpected status", "order_id", o.ID, "status", o.Status)
		}
	}
	return ret, cursor, nil
}

// GetOrder returns one order.
func (c *Private) GetOrder(ctx context.Context, orderID string) (order.Info, error) {
	ret := order.Info{}
	if _, err := c.get(ctx, "/orders/"+url.PathEscape(orderID), nil, &ret); err != nil {
		return order.Info{}, err
	}
	if err := ret.Validate(); err != nil {
		c.logger.Warn("order with unexpected status", "order_id", ret.ID, "status", ret.Status)
	}
	return ret, nil
}

// GetFills returns one page of fills.
func (c *Private) GetFills(ctx context.Context, args execution.ListArgs) ([]execution.Fill, page.Cursor, error) {
	q, err := args.Query()
	if err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []execution.Fill{}
	cursor, err := c.get(ctx, "/fills", q, &ret)
	return ret, cursor, err
}

// GetFundings returns one page of margin fundings.
func (c *Private) GetFundings(ctx context.Context, args funding.Args) ([]funding.Funding, page.Cursor, error) {
	q, err := args.Query()
	if err != nil {
		return nil, page.Cursor{}, err
	}
	ret := []funding.Funding{}
	cursor, err := c.get(ctx, "/funding", q, &ret)
	return ret, cursor, err
}

// Repay repays outstanding margin funding.
func (c *Private) Repay(ctx context.Context, params funding.RepayParams) error {
	if err := funding.Validate(params); err != nil {
		return err
	}
	return c.post(ctx, "/funding/repay", params, nil)
}

// MarginTransfer moves funds between the default and a margin profile.
func (c *Private) MarginTransfer(ctx context.Context, params funding.MarginTransferParams) (funding.MarginTransfer, error) {
	if err := funding.Validate(params); err != nil {
		return funding.MarginTransfer{}, err
	}
	ret := funding.MarginTransfer{}
	err := c.post(ctx, "/profiles/margin-transfer", params, &ret)
	return ret, err
}

// ClosePosition closes the margin position.
func (c *Private) ClosePosition(ctx context.Context, params funding.ClosePositionParams) error {
	return c.post(ctx, "/position/close", params, nil)
}

// Deposit moves funds in from a linked Coinbase account.
func (c *Private) Deposit(ctx context.Context, params transfer.DepositParams) (transfer.Result, error) {
	return c.transfer(ctx, "/deposits/coinbase-account", params)
}

// Withdraw moves funds out to a linked Coinbase account.
func (c *Private) Withdraw(ctx context.Context, params transfer.WithdrawParams) (transfer.Result, error) {
	return c.transfer(ctx, "/withdrawals/coinbase-account", params)
}

// WithdrawCrypto moves funds out to a crypto address.
func (c *Private) WithdrawCrypto(ctx context.Context, params transfer.CryptoWithdrawParams) (transfer.Result, error) {
	return c.transfer(ctx, "/withdrawals/crypto", params)
}

func (c *Private) transfer(ctx context.Context, path string, params interface{}) (transfer.Result, error) {
	if err := transfer.Validate(params); err != nil {
		return transfer.Result{}, err
	}
	ret := transfer.Result{}
	if err := c.post(ctx, path, params, &ret); err != nil {
		return transfer.Result{}, err
	}
	c.logger.Info("transfer submitted", "path", path, "id", ret.ID, "amount", ret.Amount.String(), "currency", ret.Currency)
	return ret, nil
}

// GetTrailingVolume returns the 30 day volume per product.
func (c *Private) GetTrailingVolume(ctx context.Context) ([]account.TrailingVolume, error) {
	ret := []account.TrailingVolume{}
	_, err := c.get(ctx, "/users/self/trailing-volume", nil, &ret)
	return ret, err
}

var (
	_ exchange.PublicClient        = (*Public)(nil)
	_ exchange.AuthenticatedClient = (*Private)(nil)
)
