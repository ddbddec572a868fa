package valuation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapwallet/internal/domain"
)

func TestExchangeAmount(t *testing.T) {
	t.Run("self exchange is identity", func(t *testing.T) {
		amount := decimal.NewFromFloat(42.5)
		price := decimal.NewFromInt(2000)

		got, ok := ExchangeAmount(amount, price, price)
		require.True(t, ok)
		assert.True(t, got.Equal(amount))
	})

	t.Run("undefined when from price is zero", func(t *testing.T) {
		_, ok := ExchangeAmount(decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(5))
		assert.False(t, ok)
	})

	t.Run("undefined when to price is zero", func(t *testing.T) {
		_, ok := ExchangeAmount(decimal.NewFromInt(10), decimal.NewFromInt(5), decimal.Zero)
		assert.False(t, ok)
	})

	t.Run("cross rate", func(t *testing.T) {
		// 50 USD at price 1 into ETH at price 2000 -> 0.025 ETH
		got, ok := ExchangeAmount(decimal.NewFromInt(50), decimal.NewFromInt(1), decimal.NewFromInt(2000))
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromFloat(0.025)))
	})
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		name  string
		value decimal.Decimal
		want  string
	}{
		{"zero", decimal.Zero, "0"},
		{"strips trailing zeros", decimal.NewFromFloat(1.20000), "1.2"},
		{"small magnitude rounds to six places", decimal.NewFromFloat(0.1000001), "0.1"},
		{"large magnitude rounds to four places", decimal.NewFromFloat(123.45678), "123.4568"},
		{"integer stays integer", decimal.NewFromInt(100), "100"},
		{"six places kept below one", decimal.NewFromFloat(0.123456789), "0.123457"},
		{"negative", decimal.NewFromFloat(-1.50000), "-1.5"},
		{"rounds away below display precision", decimal.NewFromFloat(0.0000001), "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatAmount(tc.value))
		})
	}
}

func TestRateLine(t *testing.T) {
	btc := domain.Asset{Symbol: "BTC", Price: decimal.NewFromInt(40000)}
	eth := domain.Asset{Symbol: "ETH", Price: decimal.NewFromInt(2000)}

	assert.Equal(t, "1 BTC = 20 ETH", RateLine(btc, eth))
	assert.Equal(t, "1 ETH = 0.05 BTC", RateLine(eth, btc))

	unpriced := domain.Asset{Symbol: "XYZ"}
	assert.Equal(t, "", RateLine(btc, unpriced))
}
