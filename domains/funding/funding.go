package funding

import (
	"fmt"
	"net/url"
	"time"

	"github.com/TTRSQ/gdax/domains/base"
	"github.com/TTRSQ/gdax/util"
	"github.com/shopspring/decimal"
)

// Funding is a margin funding record.
type Funding struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	ProfileID    string          `json:"profile_id"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	Currency     base.Currency   `json:"currency"`
	RepaidAmount decimal.Decimal `json:"repaid_amount"`
}

// Args filters GET /funding.
type Args struct {
	Status string `validate:"omitempty,oneof=outstanding settled rejected"`
}

// Query validates and encodes the args.
func (a Args) Query() (url.Values, error) {
	if err := util.Validator().Struct(a); err != nil {
		return nil, fmt.Errorf("funding args: %w", err)
	}
	q := url.Values{}
	if a.Status != "" {
		q.Set("status", a.Status)
	}
	return q, nil
}

// RepayParams body of POST /funding/repay.
type RepayParams struct {
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency base.Currency   `json:"currency" validate:"required"`
}

// MarginTransferParams body of POST /profiles/margin-transfer.
type MarginTransferParams struct {
	MarginProfileID string          `json:"margin_profile_id" validate:"required"`
	Type            string          `json:"type" validate:"required,oneof=deposit withdraw"`
	Currency        base.Currency   `json:"currency" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
}

// MarginTransfer is the response of a margin transfer.
type MarginTransfer struct {
	CreatedAt       time.Time       `json:"created_at"`
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ProfileID       string          `json:"profile_id"`
	MarginProfileID string          `json:"margin_profile_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        base.Currency   `json:"currency"`
	AccountID       string          `json:"account_id"`
	MarginAccountID string          `json:"margin_account_id"`
	MarginProductID string          `json:"margin_product_id"`
	Status          string          `json:"status"`
	Nonce           int64           `json:"nonce"`
}

// ClosePositionParams body of POST /position/close.
type ClosePositionParams struct {
	RepayOnly bool `json:"repay_only"`
}

// Validate runs the struct tags of any of the params above.
func Validate(params interface{}) error {
	if err := util.Validator().Struct(params); err != nil {
		return fmt.Errorf("funding params: %w", err)
	}
	return nil
}
