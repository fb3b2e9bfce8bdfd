package exchange

import (
	"context"
	"errors"

	"github.com/TTRSQ/gdax/domains/account"
	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/board"
	"github.com/TTRSQ/gdax/domains/execution"
	"github.com/TTRSQ/gdax/domains/feed"
	"github.com/TTRSQ/gdax/domains/funding"
	"github.com/TTRSQ/gdax/domains/order"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/domains/product"
	"github.com/TTRSQ/gdax/domains/transfer"
)

// ErrKeyRequired is returned when a private client is built without credentials.
var ErrKeyRequired = errors.New("APIKey, APISecKey and Passphrase required")

// Key .. key data for use private apis.
type Key struct {
	APIKey     string
	APISecKey  string
	Passphrase string
}

// Validate checks that every part of the key is present.
func (k Key) Validate() error {
	if k.APIKey == "" || k.APISecKey == "" || k.Passphrase == "" {
		return ErrKeyRequired
	}
	return nil
}

// PublicClient read-only market data.
type PublicClient interface {
	ExchangeName() string

	GetProducts(ctx context.Context) ([]product.Info, error)
	GetProductOrderBook(ctx context.Context, productID string, level int) (board.Book, error)
	GetProductTicker(ctx context.Context, productID string) (product.Ticker, error)
	GetProductTrades(ctx context.Context, productID string, args *page.Args) ([]product.Trade, page.Cursor, error)
	// GetProductTradeStream delivers trades oldest first. The trade channel is
	// closed when the stream ends; the error channel carries at most one error.
	GetProductTradeStream(ctx context.Context, productID string, args product.TradeStreamArgs) (<-chan product.Trade, <-chan error)
	GetProductHistoricRates(ctx context.Context, productID string, args product.HistoricRatesArgs) ([]product.Candle, error)
	GetProduct24HrStats(ctx context.Context, productID string) (product.Stats, error)
	GetCurrencies(ctx context.Context) ([]base.CurrencyInfo, error)
	GetTime(ctx context.Context) (base.ServerTime, error)
}

// Trader order management shared by the exchange and the in-memory dummy.
type Trader interface {
	ExchangeName() string

	Buy(ctx context.Context, params order.Params) (order.Result, error)
	Sell(ctx context.Context, params order.Params) (order.Result, error)
	PlaceOrder(ctx context.Context, params order.Params) (order.Result, error)
	CancelOrder(ctx context.Context, orderID string) error
	// CancelAllOrders returns the ids of every cancelled order.
	CancelAllOrders(ctx context.Context, productID string) ([]string, error)
	GetOrders(ctx context.Context, args order.ListArgs) ([]order.Info, page.Cursor, error)
	GetOrder(ctx context.Context, orderID string) (order.Info, error)
	GetFills(ctx context.Context, args execution.ListArgs) ([]execution.Fill, page.Cursor, error)
	GetAccounts(ctx context.Context) ([]account.Account, error)
}

// AuthenticatedClient account, order, fill, funding, margin and transfer operations.
type AuthenticatedClient interface {
	PublicClient
	Trader

	GetCoinbaseAccounts(ctx context.Context) ([]account.CoinbaseAccount, error)
	GetAccount(ctx context.Context, accountID string) (account.Account, error)
	GetAccountHistory(ctx context.Context, accountID string, args *page.Args) ([]account.LedgerEntry, page.Cursor, error)
	GetAccountHolds(ctx context.Context, accountID string, args *page.Args) ([]account.Hold, page.Cursor, error)

	GetFundings(ctx context.Context, args funding.Args) ([]funding.Funding, page.Cursor, error)
	Repay(ctx context.Context, params funding.RepayParams) error
	MarginTransfer(ctx context.Context, params funding.MarginTransferParams) (funding.MarginTransfer, error)
	ClosePosition(ctx context.Context, params funding.ClosePositionParams) error

	Deposit(ctx context.Context, params transfer.DepositParams) (transfer.Result, error)
	Withdraw(ctx context.Context, params transfer.WithdrawParams) (transfer.Result, error)
	WithdrawCrypto(ctx context.Context, params transfer.CryptoWithdrawParams) (transfer.Result, error)

	GetTrailingVolume(ctx context.Context) ([]account.TrailingVolume, error)
}

// Stream socketを起動し受け取る
type Stream interface {
	OnMessage(handler func(feed.Message))
	OnError(handler func(error))
	OnOpen(handler func())
	OnClose(handler func())

	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, productIDs, channels []string) error
	Unsubscribe(ctx context.Context, productIDs, channels []string) error
	Disconnect() error
}
