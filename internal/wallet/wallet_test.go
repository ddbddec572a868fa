package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"swapwallet/internal/domain"
	"swapwallet/internal/storage/walletstate"
)

func newTestStore(t *testing.T, initial map[string]decimal.Decimal) (*Store, *walletstate.Store) {
	t.Helper()
	slot, err := walletstate.NewStore(t.TempDir())
	require.NoError(t, err)
	cfg := Config{SettleDelay: time.Millisecond, InitialBalances: initial}
	return New(cfg, slot, nil, zap.NewNop()), slot
}

func TestNew_DefaultBalances(t *testing.T) {
	s, _ := newTestStore(t, nil)
	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(100)))
	assert.True(t, s.GetBalance("BTC").IsZero())
	assert.False(t, s.Swapping())
}

func TestNew_LoadsPersistedBalances(t *testing.T) {
	dir := t.TempDir()
	slot, err := walletstate.NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, slot.Save(map[string]decimal.Decimal{"ETH": decimal.NewFromFloat(1.5)}))

	cfg := Config{SettleDelay: time.Millisecond}
	s := New(cfg, slot, nil, zap.NewNop())
	assert.True(t, s.GetBalance("ETH").Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, s.GetBalance("USD").IsZero())

	// loading the same slot again yields the same balances
	again := New(cfg, slot, nil, zap.NewNop())
	assert.True(t, again.GetBalance("ETH").Equal(decimal.NewFromFloat(1.5)))
}

func TestNew_CorruptSlotFallsBack(t *testing.T) {
	slot := &failingSlot{loadErr: errors.New("garbled")}
	s := New(Config{SettleDelay: time.Millisecond}, slot, nil, zap.NewNop())
	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(100)))
}

func TestExecuteSwap_HappyPath(t *testing.T) {
	// initial {USD: 100}, swap 50 USD at price 1 into ETH at price 2000
	s, slot := newTestStore(t, nil)

	err := s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(50), "ETH", decimal.NewFromFloat(0.025))
	require.NoError(t, err)

	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(50)))
	assert.True(t, s.GetBalance("ETH").Equal(decimal.NewFromFloat(0.025)))
	assert.False(t, s.Swapping())

	// committed state reached the slot
	persisted, err := slot.Load()
	require.NoError(t, err)
	assert.True(t, persisted["USD"].Equal(decimal.NewFromInt(50)))
	assert.True(t, persisted["ETH"].Equal(decimal.NewFromFloat(0.025)))
}

func TestExecuteSwap_DrainedKeyIsPruned(t *testing.T) {
	s, _ := newTestStore(t, nil)

	err := s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(100), "ETH", decimal.NewFromFloat(0.05))
	require.NoError(t, err)

	balances := s.Balances()
	_, held := balances["USD"]
	assert.False(t, held, "drained USD key must be removed")
	assert.True(t, balances["ETH"].Equal(decimal.NewFromFloat(0.05)))
	assert.Len(t, balances, 1)
}

func TestExecuteSwap_InsufficientBalance(t *testing.T) {
	s, _ := newTestStore(t, nil)

	err := s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(1000), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))

	// no state change
	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(100)))
	assert.True(t, s.GetBalance("ETH").IsZero())
	assert.False(t, s.Swapping())
}

func TestExecuteSwap_NonPositiveAmount(t *testing.T) {
	s, _ := newTestStore(t, nil)

	assert.Error(t, s.ExecuteSwap(context.Background(), "USD", decimal.Zero, "ETH", decimal.NewFromInt(1)))
	assert.Error(t, s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(-5), "ETH", decimal.NewFromInt(1)))
	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(100)))
}

func TestExecuteSwap_RejectsWhilePending(t *testing.T) {
	slot, err := walletstate.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(Config{SettleDelay: 100 * time.Millisecond}, slot, nil, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(10), "ETH", decimal.NewFromFloat(0.005))
	}()

	require.Eventually(t, s.Swapping, time.Second, time.Millisecond)

	err = s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(10), "ETH", decimal.NewFromFloat(0.005))
	assert.True(t, errors.Is(err, domain.ErrSwapInFlight))

	wg.Wait()
	assert.False(t, s.Swapping())
	assert.True(t, s.GetBalance("USD").Equal(decimal.NewFromInt(90)))
}

func TestExecuteSwap_SymbolCountGrowsByAtMostOne(t *testing.T) {
	s, _ := newTestStore(t, map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(100),
		"BTC": decimal.NewFromInt(1),
	})

	before := len(s.Balances())
	require.NoError(t, s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(10), "ETH", decimal.NewFromFloat(0.005)))
	after := len(s.Balances())
	assert.LessOrEqual(t, after, before+1)
}

func TestExecuteSwap_PersistFailureIsSwallowed(t *testing.T) {
	slot := &failingSlot{saveErr: errors.New("quota exceeded")}
	s := New(Config{SettleDelay: time.Millisecond}, slot, nil, zap.NewNop())

	err := s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(50), "ETH", decimal.NewFromFloat(0.025))
	require.NoError(t, err, "persistence failure must not fail the swap")
	assert.True(t, s.GetBalance("ETH").Equal(decimal.NewFromFloat(0.025)))
}

func TestExecuteSwap_JournalsCommittedSwaps(t *testing.T) {
	jrnl := &captureJournal{}
	slot, err := walletstate.NewStore(t.TempDir())
	require.NoError(t, err)
	s := New(Config{SettleDelay: time.Millisecond}, slot, jrnl, zap.NewNop())

	require.NoError(t, s.ExecuteSwap(context.Background(), "USD", decimal.NewFromInt(50), "ETH", decimal.NewFromFloat(0.025)))

	require.Len(t, jrnl.records, 1)
	rec := jrnl.records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "USD", rec.FromSymbol)
	assert.Equal(t, "50", rec.FromAmount)
	assert.Equal(t, "ETH", rec.ToSymbol)
	assert.Equal(t, "0.025", rec.ToAmount)
}

func TestTotalValue(t *testing.T) {
	s, _ := newTestStore(t, map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(100),
		"ETH": decimal.NewFromInt(2),
		"XYZ": decimal.NewFromInt(500),
	})

	prices := map[string]decimal.Decimal{"ETH": decimal.NewFromInt(2000)}

	// 100*1 (base fallback) + 2*2000 + 500*0 (unpriced)
	total := s.TotalValue(prices)
	assert.True(t, total.Equal(decimal.NewFromInt(4100)), "got %s", total)
}

func TestTotalValue_BasePriceFromFeedWins(t *testing.T) {
	s, _ := newTestStore(t, nil)

	prices := map[string]decimal.Decimal{"USD": decimal.NewFromFloat(0.99)}
	assert.True(t, s.TotalValue(prices).Equal(decimal.NewFromInt(99)))
}

type failingSlot struct {
	loadErr error
	saveErr error
}

func (f *failingSlot) Load() (map[string]decimal.Decimal, error) { return nil, f.loadErr }
func (f *failingSlot) Save(map[string]decimal.Decimal) error     { return f.saveErr }

type captureJournal struct {
	records []domain.SwapRecord
}

func (c *captureJournal) Append(record domain.SwapRecord) error {
	c.records = append(c.records, record)
	return nil
}
