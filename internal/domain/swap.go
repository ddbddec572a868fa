package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SwapRequest describes a proposed balance transfer. Transient, never persisted:
// it is validated against current balances and prices, then committed or discarded.
type SwapRequest struct {
	FromSymbol string
	FromAmount decimal.Decimal
	ToSymbol   string
	ToAmount   decimal.Decimal
}

// SwapRecord is a committed swap as written to the journal.
type SwapRecord struct {
	ID         string    `json:"id"`
	FromSymbol string    `json:"from_symbol"`
	FromAmount string    `json:"from_amount"`
	ToSymbol   string    `json:"to_symbol"`
	ToAmount   string    `json:"to_amount"`
	ExecutedAt time.Time `json:"executed_at"`
}

// SwapRecordEntry pairs a journal record with its WAL index so readers can
// resume streaming from where they left off.
type SwapRecordEntry struct {
	Index  uint64
	Record SwapRecord
}
