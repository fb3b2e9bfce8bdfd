package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID GlobalID = "{ExchangeName}::{Symbol}::{LocalID}" = "gdax::BTC-USD::d0c5340b-6d6c-49d9-b567-48c4bfca13d2"
type ID struct {
	ExchangeName string
	Symbol       string
	LocalID      string
}

// NewID .. make id obj.
func NewID(exchange, symbol, localID string) ID {
	return ID{
		ExchangeName: exchange,
		Symbol:       symbol,
		LocalID:      localID,
	}
}

// ToString return globalID with string.
func (i ID) ToString() string {
	return fmt.Sprintf("%s::%s::%s", i.ExchangeName, i.Symbol, i.LocalID)
}

// Parse is the inverse of ToString.
func Parse(global string) (ID, error) {
	parts := strings.SplitN(global, "::", 3)
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return ID{}, fmt.Errorf("malformed global id %q", global)
	}
	return NewID(parts[0], parts[1], parts[2]), nil
}

// NewClientOID returns a fresh client_oid for order placement.
func NewClientOID() string {
	return uuid.NewString()
}
