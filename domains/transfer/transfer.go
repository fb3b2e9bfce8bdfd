package transfer

import (
	"fmt"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/util"
	"github.com/shopspring/decimal"
)

// DepositParams moves funds from a linked Coinbase account.
type DepositParams struct {
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency          base.Currency   `json:"currency" validate:"required"`
	CoinbaseAccountID string          `json:"coinbase_account_id" validate:"required"`
}

// WithdrawParams moves funds to a linked Coinbase account.
type WithdrawParams struct {
	Amount            decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency          base.Currency   `json:"currency" validate:"required"`
	CoinbaseAccountID string          `json:"coinbase_account_id" validate:"required"`
}

// CryptoWithdrawParams moves funds to an external crypto address.
type CryptoWithdrawParams struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency      base.Currency   `json:"currency" validate:"required"`
	CryptoAddress string          `json:"crypto_address" validate:"required"`
}

// Result of a deposit or withdrawal.
type Result struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency base.Currency   `json:"currency"`
	PayoutAt *time.Time      `json:"payout_at,omitempty"`
}

// Validate runs the struct tags of any of the params above.
func Validate(params interface{}) error {
	if err := util.Validator().Struct(params); err != nil {
		return fmt.Errorf("transfer params: %w", err)
	}
	return nil
}
