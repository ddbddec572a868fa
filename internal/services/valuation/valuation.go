// Package valuation holds the pure rate math and display formatting for swaps.
package valuation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"swapwallet/internal/domain"
)

// ExchangeAmount converts amount priced at fromPrice into units priced at
// toPrice, both USD-denominated. The second return value is false when either
// price is zero: the rate is undefined, which is not an error condition.
func ExchangeAmount(amount, fromPrice, toPrice decimal.Decimal) (decimal.Decimal, bool) {
	if fromPrice.IsZero() || toPrice.IsZero() {
		return decimal.Decimal{}, false
	}
	return amount.Mul(fromPrice).Div(toPrice), true
}

// FormatAmount renders an amount for display. Zero renders as "0", magnitudes
// of one and above round to at most 4 decimal places, smaller magnitudes to at
// most 6, and trailing zeros are stripped. Never use this for stored values.
func FormatAmount(value decimal.Decimal) string {
	if value.IsZero() {
		return "0"
	}

	places := int32(6)
	if value.Abs().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		places = 4
	}

	s := value.Round(places).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}

	return s
}

// RateLine renders the "1 BTC = 0.05 ETH" caption for a pair of assets.
// Returns an empty string when the rate is undefined.
func RateLine(from, to domain.Asset) string {
	rate, ok := ExchangeAmount(decimal.NewFromInt(1), from.Price, to.Price)
	if !ok {
		return ""
	}
	return fmt.Sprintf("1 %s = %s %s", from.Symbol, FormatAmount(rate), to.Symbol)
}
