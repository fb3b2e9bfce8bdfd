package account

import (
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/shopspring/decimal"
)

// Account is a trading account, one per currency and profile.
type Account struct {
	ID        string          `json:"id"`
	ProfileID string          `json:"profile_id"`
	Currency  base.Currency   `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Hold      decimal.Decimal `json:"hold"`
}

// CoinbaseAccountType of a linked Coinbase account.
type CoinbaseAccountType string

// Linked account types.
const (
	Wallet CoinbaseAccountType = "wallet"
	Fiat   CoinbaseAccountType = "fiat"
)

// CoinbaseAccount is a linked Coinbase wallet usable for deposits and withdrawals.
type CoinbaseAccount struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Balance  decimal.Decimal     `json:"balance"`
	Currency base.Currency       `json:"currency"`
	Type     CoinbaseAccountType `json:"type"`
	Primary  bool                `json:"primary"`
	Active   bool                `json:"active"`
}

// LedgerEntry is one row of an account history.
// Type is one of transfer, match, fee, rebate.
type LedgerEntry struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Amount    decimal.Decimal   `json:"amount"`
	Balance   decimal.Decimal   `json:"balance"`
	Type      string            `json:"type"`
	Details   map[string]string `json:"details"`
}

// Hold reserves funds against an open order or a pending transfer.
type Hold struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	Ref       string          `json:"ref"`
}

// TrailingVolume is the 30 day volume of one product.
type TrailingVolume struct {
	ProductID      string          `json:"product_id"`
	ExchangeVolume decimal.Decimal `json:"exchange_volume"`
	Volume         decimal.Decimal `json:"volume"`
	RecordedAt     time.Time       `json:"recorded_at"`
}
