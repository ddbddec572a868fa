package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromYaml(t *testing.T) {
	path := writeYaml(t, `
feed_url: https://feed.example.com/prices.json
base_currency: EUR
settle_delay: 500ms
refresh_interval: 1m
initial_balances:
  EUR: "250"
  BTC: "0.5"
`)

	cfg, err := fromYaml(path, defaults())
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com/prices.json", cfg.FeedURL)
	assert.Equal(t, "EUR", cfg.BaseCurrency)
	assert.Equal(t, 500*time.Millisecond, cfg.SettleDelay)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.True(t, cfg.InitialBalances["EUR"].Equal(decimal.NewFromInt(250)))
	assert.True(t, cfg.InitialBalances["BTC"].Equal(decimal.NewFromFloat(0.5)))

	// untouched fields keep defaults
	assert.Equal(t, defaultIconBaseURL, cfg.IconBaseURL)
}

func TestFromYaml_InvalidBalance(t *testing.T) {
	for name, content := range map[string]string{
		"not a number": "initial_balances:\n  USD: abc\n",
		"negative":     "initial_balances:\n  USD: \"-5\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fromYaml(writeYaml(t, content), defaults())
			assert.Error(t, err)
		})
	}
}

func TestFromYaml_MissingFile(t *testing.T) {
	_, err := fromYaml(filepath.Join(t.TempDir(), "nope.yaml"), defaults())
	assert.Error(t, err)
}
