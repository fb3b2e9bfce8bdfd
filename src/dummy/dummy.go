package dummy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TTRSQ/gdax/domains/account"
	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/execution"
	"github.com/TTRSQ/gdax/domains/order"
	"github.com/TTRSQ/gdax/domains/order/id"
	"github.com/TTRSQ/gdax/domains/page"
	"github.com/TTRSQ/gdax/interface/exchange"
	"github.com/shopspring/decimal"
)

// Name of the paper exchange.
const Name = "dummy"

var (
	// ErrOrderNotFound is returned for unknown or already closed orders.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientFunds is returned when the available balance can not cover an order.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNoPrice is returned by market orders before any UpdateLTP on the product.
	ErrNoPrice = errors.New("no last traded price")
	// ErrUnsupported is returned for stop orders.
	ErrUnsupported = errors.New("order type not supported")
	// ErrInvalidPrice is returned by UpdateLTP for a price that is not positive.
	ErrInvalidPrice = errors.New("last traded price must be positive")
	// ErrPostOnly is returned for a post only order that would take liquidity.
	ErrPostOnly = errors.New("post only order would cross")
)

// Dummy is an in-memory paper exchange. Market orders fill at the last traded
// price; limit orders rest until UpdateLTP crosses them.
type Dummy struct {
	mu sync.Mutex

	ltp      map[string]decimal.Decimal
	balances map[base.Currency]decimal.Decimal
	holds    map[base.Currency]decimal.Decimal

	orders  map[string]*order.Info
	history []string // order ids, oldest first
	fills   []execution.Fill
	tradeID int64

	now func() time.Time
}

// New return paper exchange funded with balances.
func New(balances map[base.Currency]decimal.Decimal) *Dummy {
	dm := &Dummy{
		ltp:      map[string]decimal.Decimal{},
		balances: map[base.Currency]decimal.Decimal{},
		holds:    map[base.Currency]decimal.Decimal{},
		orders:   map[string]*order.Info{},
		now:      time.Now,
	}
	for c, v := range balances {
		dm.balances[c] = v
	}
	return dm
}

// SetClock replaces time.Now for created_at and done_at.
func (dm *Dummy) SetClock(now func() time.Time) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.now = now
}

// ExchangeName implements exchange.Trader.
func (dm *Dummy) ExchangeName() string {
	return Name
}

// UpdateLTP sets the last traded price of productID and fills every resting
// limit order it crosses. Returns the fills it produced.
func (dm *Dummy) UpdateLTP(productID string, price decimal.Decimal) ([]execution.Fill, error) {
	if !price.IsPositive() {
		return nil, fmt.Errorf("[dummy][UpdateLTP] %s %s: %w", productID, price, ErrInvalidPrice)
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.ltp[productID] = price
	return dm.updateExecution(productID), nil
}

// Buy places params as a buy order.
func (dm *Dummy) Buy(ctx context.Context, params order.Params) (order.Result, error) {
	return dm.PlaceOrder(ctx, params.WithSide(base.Buy))
}

// Sell places params as a sell order.
func (dm *Dummy) Sell(ctx context.Context, params order.Params) (order.Result, error) {
	return dm.PlaceOrder(ctx, params.WithSide(base.Sell))
}

// PlaceOrder validates params, then fills or rests the order.
func (dm *Dummy) PlaceOrder(ctx context.Context, params order.Params) (order.Result, error) {
	if err := params.Validate(); err != nil {
		return order.Result{}, err
	}
	baseCur, quoteCur, err := splitProduct(params.Product())
	if err != nil {
		return order.Result{}, err
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	info := &order.Info{BaseInfo: order.BaseInfo{
		ID:        id.NewClientOID(),
		ProductID: params.Product(),
		Side:      params.OrderSide(),
		Type:      params.OrderType(),
		CreatedAt: dm.now().UTC(),
		Status:    order.Pending,
	}}
	tif := order.GTC

	switch p := params.(type) {
	case order.MarketOrder:
		ltp, ok := dm.ltp[p.ProductID]
		if !ok {
			return order.Result{}, fmt.Errorf("[dummy][PlaceOrder] %s: %w", p.ProductID, ErrNoPrice)
		}
		size := p.Size.Decimal
		if !p.Size.Valid {
			size = p.Funds.Decimal.Div(ltp).Truncate(8)
			info.SpecifiedFunds = p.Funds.Decimal
		}
		info.Size = size
		info.STP = p.STP
		if err := dm.checkFunds(p.Side, baseCur, quoteCur, size, ltp); err != nil {
			return order.Result{}, err
		}
		dm.fill(info, ltp, execution.Taker)

	case order.LimitOrder:
		info.Price = p.Price
		info.Size = p.Size
		info.STP = p.STP
		info.PostOnly = p.PostOnly
		if p.TimeInForce != "" {
			tif = p.TimeInForce
		}
		if err := dm.checkFunds(p.Side, baseCur, quoteCur, p.Size, p.Price); err != nil {
			return order.Result{}, err
		}
		ltp, ok := dm.ltp[p.ProductID]
		crossed := ok && crosses(p.Side, p.Price, ltp)
		if crossed && p.PostOnly {
			return order.Result{}, fmt.Errorf("[dummy][PlaceOrder] %s %s at %s: %w", p.Side, p.Price, ltp, ErrPostOnly)
		}
		switch {
		case crossed:
			dm.fill(info, ltp, execution.Taker)
		case tif == order.IOC || tif == order.FOK:
			info.Status = order.Done
			doneAt := dm.now().UTC()
			info.DoneAt = &doneAt
		default:
			info.Status = order.Open
			dm.hold(info, baseCur, quoteCur)
		}

	default:
		return order.Result{}, fmt.Errorf("[dummy][PlaceOrder] %s: %w", params.OrderType(), ErrUnsupported)
	}

	dm.orders[info.ID] = info
	dm.history = append(dm.history, info.ID)
	return order.Result{BaseInfo: info.BaseInfo, TimeInForce: tif}, nil
}

// CancelOrder cancels a resting order. Cancelled orders are forgotten.
func (dm *Dummy) CancelOrder(ctx context.Context, orderID string) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	info, ok := dm.orders[orderID]
	if !ok || info.Status != order.Open {
		return fmt.Errorf("[dummy][CancelOrder] %s: %w", orderID, ErrOrderNotFound)
	}
	dm.cancel(info)
	return nil
}

// CancelAllOrders cancels every resting order, of productID only when given.
func (dm *Dummy) CancelAllOrders(ctx context.Context, productID string) ([]string, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	ids := []string{}
	for _, oid := range dm.history {
		info, ok := dm.orders[oid]
		if !ok || info.Status != order.Open {
			continue
		}
		if productID != "" && info.ProductID != productID {
			continue
		}
		dm.cancel(info)
		ids = append(ids, oid)
	}
	return ids, nil
}

// GetOrders lists orders newest first. Without a status filter only open and
// pending orders are listed. Paging is ignored.
func (dm *Dummy) GetOrders(ctx context.Context, args order.ListArgs) ([]order.Info, page.Cursor, error) {
	if _, err := args.Query(); err != nil {
		return nil, page.Cursor{}, err
	}
	want := map[order.Status]bool{order.Open: true, order.Pending: true}
	for _, s := range args.Status {
		switch s {
		case "all":
			want[order.Received] = true
			want[order.Done] = true
		case "active":
			want[order.Received] = true
		}
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()
	ret := []order.Info{}
	for i := len(dm.history) - 1; i >= 0; i-- {
		info, ok := dm.orders[dm.history[i]]
		if !ok || !want[info.Status] {
			continue
		}
		if args.ProductID != "" && info.ProductID != args.ProductID {
			continue
		}
		ret = append(ret, *info)
	}
	return ret, page.Cursor{}, nil
}

// GetOrder returns one order.
func (dm *Dummy) GetOrder(ctx context.Context, orderID string) (order.Info, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	info, ok := dm.orders[orderID]
	if !ok {
		return order.Info{}, fmt.Errorf("[dummy][GetOrder] %s: %w", orderID, ErrOrderNotFound)
	}
	return *info, nil
}

// GetFills lists fills newest first.
func (dm *Dummy) GetFills(ctx context.Context, args execution.ListArgs) ([]execution.Fill, page.Cursor, error) {
	if _, err := args.Query(); err != nil {
		return nil, page.Cursor{}, err
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	ret := []execution.Fill{}
	for i := len(dm.fills) - 1; i >= 0; i-- {
		f := dm.fills[i]
		if args.OrderID != "" && f.OrderID != args.OrderID {
			continue
		}
		if args.ProductID != "" && f.ProductID != args.ProductID {
			continue
		}
		ret = append(ret, f)
	}
	return ret, page.Cursor{}, nil
}

// GetAccounts returns one account per currency, sorted by currency.
func (dm *Dummy) GetAccounts(ctx context.Context) ([]account.Account, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	ret := []account.Account{}
	for c, balance := range dm.balances {
		hold := dm.holds[c]
		ret = append(ret, account.Account{
			ID:        Name + "-" + strings.ToLower(string(c)),
			ProfileID: Name,
			Currency:  c,
			Balance:   balance,
			Available: balance.Sub(hold),
			Hold:      hold,
		})
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Currency < ret[j].Currency })
	return ret, nil
}

func (dm *Dummy) updateExecution(productID string) []execution.Fill {
	ltp := dm.ltp[productID]
	start := len(dm.fills)
	for _, oid := range dm.history {
		info, ok := dm.orders[oid]
		if !ok || info.Status != order.Open || info.ProductID != productID {
			continue
		}
		if !crosses(info.Side, info.Price, ltp) {
			continue
		}
		dm.release(info)
		dm.fill(info, ltp, execution.Maker)
	}
	return append([]execution.Fill(nil), dm.fills[start:]...)
}

// fill executes the whole order at price and settles balances.
func (dm *Dummy) fill(info *order.Info, price decimal.Decimal, liquidity execution.Liquidity) {
	baseCur, quoteCur, _ := splitProduct(info.ProductID)
	value := price.Mul(info.Size)
	if info.Side == base.Buy {
		dm.balances[baseCur] = dm.balances[baseCur].Add(info.Size)
		dm.balances[quoteCur] = dm.balances[quoteCur].Sub(value)
	} else {
		dm.balances[baseCur] = dm.balances[baseCur].Sub(info.Size)
		dm.balances[quoteCur] = dm.balances[quoteCur].Add(value)
	}

	now := dm.now().UTC()
	dm.tradeID++
	dm.fills = append(dm.fills, execution.Fill{
		TradeID:   dm.tradeID,
		ProductID: info.ProductID,
		Price:     price,
		Size:      info.Size,
		OrderID:   info.ID,
		CreatedAt: now,
		Liquidity: liquidity,
		Fee:       decimal.Zero,
		Settled:   true,
		Side:      info.Side,
	})

	info.FilledSize = info.Size
	info.ExecutedValue = value
	info.Funds = value
	info.Status = order.Done
	info.Settled = true
	info.DoneAt = &now
}

func (dm *Dummy) checkFunds(side base.Side, baseCur, quoteCur base.Currency, size, price decimal.Decimal) error {
	cur, need := baseCur, size
	if side == base.Buy {
		cur, need = quoteCur, size.Mul(price)
	}
	available := dm.balances[cur].Sub(dm.holds[cur])
	if available.LessThan(need) {
		return fmt.Errorf("[dummy][PlaceOrder] need %s %s, available %s: %w", need, cur, available, ErrInsufficientFunds)
	}
	return nil
}

func (dm *Dummy) hold(info *order.Info, baseCur, quoteCur base.Currency) {
	if info.Side == base.Buy {
		dm.holds[quoteCur] = dm.holds[quoteCur].Add(info.Size.Mul(info.Price))
		return
	}
	dm.holds[baseCur] = dm.holds[baseCur].Add(info.Size)
}

func (dm *Dummy) release(info *order.Info) {
	baseCur, quoteCur, _ := splitProduct(info.ProductID)
	if info.Side == base.Buy {
		dm.holds[quoteCur] = dm.holds[quoteCur].Sub(info.Size.Mul(info.Price))
		return
	}
	dm.holds[baseCur] = dm.holds[baseCur].Sub(info.Size)
}

func (dm *Dummy) cancel(info *order.Info) {
	dm.release(info)
	delete(dm.orders, info.ID)
}

// crosses reports whether a limit order at price executes against ltp.
func crosses(side base.Side, price, ltp decimal.Decimal) bool {
	if side == base.Buy {
		return ltp.LessThanOrEqual(price)
	}
	return ltp.GreaterThanOrEqual(price)
}

// splitProduct "BTC-USD" -> BTC, USD
func splitProduct(productID string) (base.Currency, base.Currency, error) {
	parts := strings.SplitN(productID, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed product id %q", productID)
	}
	return base.Currency(parts[0]), base.Currency(parts[1]), nil
}

var _ exchange.Trader = (*Dummy)(nil)
