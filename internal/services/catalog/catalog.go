// Package catalog turns raw price feed batches into a deduplicated asset catalog.
package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"swapwallet/internal/domain"
)

// Normalizer builds Asset catalogs out of raw feed entries.
type Normalizer struct {
	iconBaseURL string
}

// NewNormalizer creates a Normalizer deriving icon URLs from the given base.
func NewNormalizer(iconBaseURL string) *Normalizer {
	return &Normalizer{iconBaseURL: iconBaseURL}
}

// Normalize deduplicates entries by symbol keeping the most recent valid one.
// Entries without a price or with price <= 0 are dropped silently. When two
// entries for the same symbol carry an identical timestamp, the one appearing
// later in the input wins. Output is sorted by symbol.
func (n *Normalizer) Normalize(entries []domain.PriceEntry) []domain.Asset {
	latest := make(map[string]domain.PriceEntry, len(entries))

	for _, entry := range entries {
		if !entry.HasPrice || entry.Price.LessThanOrEqual(decimal.Zero) {
			continue
		}
		existing, ok := latest[entry.Symbol]
		if !ok || !entry.ObservedAt.Before(existing.ObservedAt) {
			latest[entry.Symbol] = entry
		}
	}

	assets := make([]domain.Asset, 0, len(latest))
	for symbol, entry := range latest {
		assets = append(assets, domain.Asset{
			Symbol:  symbol,
			Price:   entry.Price,
			IconURL: n.IconURL(symbol),
		})
	}

	sort.Slice(assets, func(i, j int) bool {
		return assets[i].Symbol < assets[j].Symbol
	})

	return assets
}

// IconURL builds the icon location for a symbol. No existence check is done,
// a missing icon is the presentation layer's problem.
func (n *Normalizer) IconURL(symbol string) string {
	return fmt.Sprintf("%s/%s.svg", n.iconBaseURL, symbol)
}
