// Package domain defines core data structures shared by the swap wallet services.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEntry is a single raw observation from the price feed.
// Batches may contain duplicate symbols and entries without a usable price.
type PriceEntry struct {
	Symbol     string
	ObservedAt time.Time
	Price      decimal.Decimal
	// HasPrice is false when the feed omitted the price field entirely.
	HasPrice bool
}

// Asset is a normalized, priced, displayable currency record.
// Built fresh from every feed batch, never mutated in place.
type Asset struct {
	// Symbol uniquely identifies the asset within a catalog.
	Symbol string
	// Price is the USD price of one unit, always positive.
	Price decimal.Decimal
	// IconURL points at the display icon for the symbol.
	IconURL string
}
