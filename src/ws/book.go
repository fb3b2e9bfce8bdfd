package ws

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/domains/board"
	"github.com/TTRSQ/gdax/domains/feed"
	"github.com/shopspring/decimal"
)

// ErrNoSnapshot is returned for an l2update that arrives before the snapshot.
var ErrNoSnapshot = errors.New("level2 update before snapshot")

// Book keeps the level2 order book of one product from snapshot and
// l2update messages. Safe for concurrent use.
type Book struct {
	productID string

	mu    sync.RWMutex
	ready bool
	bids  map[string]base.Norm
	asks  map[string]base.Norm
}

// NewBook returns an empty book for productID.
func NewBook(productID string) *Book {
	return &Book{
		productID: productID,
		bids:      map[string]base.Norm{},
		asks:      map[string]base.Norm{},
	}
}

// Ready reports whether a snapshot has been applied.
func (b *Book) Ready() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

// Apply updates the book. Messages of other products or types are ignored.
func (b *Book) Apply(msg feed.Message) error {
	if msg.ProductID != b.productID {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch msg.Type {
	case feed.TypeSnapshot:
		b.bids = map[string]base.Norm{}
		b.asks = map[string]base.Norm{}
		for _, v := range msg.Bids {
			set(b.bids, v[0], v[1])
		}
		for _, v := range msg.Asks {
			set(b.asks, v[0], v[1])
		}
		b.ready = true
	case feed.TypeL2Update:
		if !b.ready {
			return ErrNoSnapshot
		}
		for _, ch := range msg.Changes {
			switch ch.Side {
			case base.Buy:
				set(b.bids, ch.Price, ch.Size)
			case base.Sell:
				set(b.asks, ch.Price, ch.Size)
			default:
				return fmt.Errorf("l2update: unknown side %q", ch.Side)
			}
		}
	}
	return nil
}

func set(side map[string]base.Norm, price, size decimal.Decimal) {
	key := price.String()
	if size.IsZero() {
		delete(side, key)
		return
	}
	side[key] = base.Norm{Price: price, Size: size}
}

// Board renders the top depth levels of each side, all when depth <= 0.
func (b *Book) Board(depth int) board.Board {
	b.mu.RLock()
	defer b.mu.RUnlock()

	asks := sorted(b.asks, func(x, y decimal.Decimal) bool { return x.LessThan(y) }, depth)
	bids := sorted(b.bids, func(x, y decimal.Decimal) bool { return x.GreaterThan(y) }, depth)
	return board.New(b.productID, asks, bids)
}

func sorted(side map[string]base.Norm, better func(x, y decimal.Decimal) bool, depth int) []base.Norm {
	ret := make([]base.Norm, 0, len(side))
	for _, v := range side {
		ret = append(ret, v)
	}
	sort.Slice(ret, func(i, j int) bool {
		return better(ret[i].Price, ret[j].Price)
	})
	if depth > 0 && len(ret) > depth {
		ret = ret[:depth]
	}
	return ret
}
