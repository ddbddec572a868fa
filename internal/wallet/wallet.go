// Package wallet owns the process-wide balance state and the swap transition.
package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwallet/internal/domain"
)

const (
	// DefaultBaseCurrency carries an implicit price of 1 when absent from a
	// price mapping.
	DefaultBaseCurrency = "USD"
	// DefaultSettleDelay simulates settlement latency on every swap.
	DefaultSettleDelay = 2 * time.Second
)

// swapState is the explicit in-flight machine: Idle -> Pending -> Idle.
type swapState int

const (
	stateIdle swapState = iota
	statePending
)

type stateStore interface {
	Load() (map[string]decimal.Decimal, error)
	Save(balances map[string]decimal.Decimal) error
}

type journal interface {
	Append(record domain.SwapRecord) error
}

// PersistResult reports whether balances reached the persistent slot after a
// mutation. Skipped persistence is logged, never surfaced to swap callers:
// balances stay correct in memory for the session.
type PersistResult struct {
	Persisted bool
	Reason    error
}

// Config tunes a Store. Zero fields select the documented defaults.
type Config struct {
	BaseCurrency    string
	SettleDelay     time.Duration
	InitialBalances map[string]decimal.Decimal
}

// Store holds wallet balances. The only writer is ExecuteSwap, everything else
// reads through accessors.
type Store struct {
	mu           sync.RWMutex
	balances     map[string]decimal.Decimal
	state        swapState
	baseCurrency string
	settleDelay  time.Duration
	stateStore   stateStore
	journal      journal
	logger       *zap.Logger
}

// New builds a Store, loading balances from the state store. An absent, empty
// or invalid slot falls back to the initial balances.
func New(cfg Config, store stateStore, jrnl journal, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = DefaultBaseCurrency
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultSettleDelay
	}
	if cfg.InitialBalances == nil {
		cfg.InitialBalances = map[string]decimal.Decimal{
			DefaultBaseCurrency: decimal.NewFromInt(100),
		}
	}

	s := &Store{
		baseCurrency: cfg.BaseCurrency,
		settleDelay:  cfg.SettleDelay,
		stateStore:   store,
		journal:      jrnl,
		logger:       logger,
	}
	s.balances = s.loadOrDefault(cfg.InitialBalances)

	logger.Info("wallet initialized",
		zap.Int("currencies", len(s.balances)),
		zap.String("base", s.baseCurrency))

	return s
}

func (s *Store) loadOrDefault(initial map[string]decimal.Decimal) map[string]decimal.Decimal {
	if s.stateStore != nil {
		loaded, err := s.stateStore.Load()
		if err != nil {
			s.logger.Warn("stored balances unusable, starting from defaults", zap.Error(err))
		} else if len(loaded) > 0 {
			return loaded
		}
	}

	balances := make(map[string]decimal.Decimal, len(initial))
	for symbol, amount := range initial {
		balances[symbol] = amount
	}
	return balances
}

// GetBalance returns the held amount for a symbol, zero when unknown.
func (s *Store) GetBalance(symbol string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[symbol]
}

// Balances returns a copy of all held balances.
func (s *Store) Balances() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(s.balances))
	for symbol, amount := range s.balances {
		out[symbol] = amount
	}
	return out
}

// Swapping reports whether a swap is currently settling.
func (s *Store) Swapping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == statePending
}

// TotalValue sums amount*price over all holdings. A symbol missing from
// prices contributes its amount for the base currency (implicit price 1) and
// nothing otherwise, so unpriced holdings never inflate the total.
func (s *Store) TotalValue(prices map[string]decimal.Decimal) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for symbol, amount := range s.balances {
		price, ok := prices[symbol]
		if !ok {
			if symbol != s.baseCurrency {
				continue
			}
			price = decimal.NewFromInt(1)
		}
		total = total.Add(amount.Mul(price))
	}
	return total
}

// ExecuteSwap transfers fromAmount of fromSymbol into toAmount of toSymbol.
// It rejects while another swap is pending and when the held balance does not
// cover fromAmount, leaving all state untouched. Once the settlement delay
// starts the swap always commits; the commit is a single replacement visible
// to readers at once. Persistence after the commit is best-effort.
func (s *Store) ExecuteSwap(ctx context.Context, fromSymbol string, fromAmount decimal.Decimal, toSymbol string, toAmount decimal.Decimal) error {
	if fromAmount.LessThanOrEqual(decimal.Zero) {
		return errors.Errorf("swap amount must be positive, got %s", fromAmount.String())
	}

	s.mu.Lock()
	if s.state == statePending {
		s.mu.Unlock()
		return domain.ErrSwapInFlight
	}
	if s.balances[fromSymbol].LessThan(fromAmount) {
		have := s.balances[fromSymbol]
		s.mu.Unlock()
		return errors.Wrapf(domain.ErrInsufficientBalance, "have %s %s, need %s",
			have.String(), fromSymbol, fromAmount.String())
	}
	s.state = statePending
	s.mu.Unlock()

	defer s.setIdle()

	// settlement latency; runs to completion, no cancellation
	time.Sleep(s.settleDelay)

	s.mu.Lock()
	remaining := s.balances[fromSymbol].Sub(fromAmount)
	if remaining.LessThanOrEqual(decimal.Zero) {
		// prune drained keys, including tiny negatives left by rounding
		delete(s.balances, fromSymbol)
	} else {
		s.balances[fromSymbol] = remaining
	}
	s.balances[toSymbol] = s.balances[toSymbol].Add(toAmount)

	snapshot := make(map[string]decimal.Decimal, len(s.balances))
	for symbol, amount := range s.balances {
		snapshot[symbol] = amount
	}
	s.state = stateIdle
	s.mu.Unlock()

	if res := s.persist(snapshot); !res.Persisted {
		s.logger.Warn("wallet state not persisted", zap.Error(res.Reason))
	}
	s.journalSwap(fromSymbol, fromAmount, toSymbol, toAmount)

	s.logger.Info("swap executed",
		zap.String("from", fromSymbol),
		zap.String("from_amount", fromAmount.String()),
		zap.String("to", toSymbol),
		zap.String("to_amount", toAmount.String()))

	return nil
}

func (s *Store) setIdle() {
	s.mu.Lock()
	s.state = stateIdle
	s.mu.Unlock()
}

func (s *Store) persist(snapshot map[string]decimal.Decimal) PersistResult {
	if s.stateStore == nil {
		return PersistResult{Reason: errors.New("no state store configured")}
	}
	if err := s.stateStore.Save(snapshot); err != nil {
		return PersistResult{Reason: err}
	}
	return PersistResult{Persisted: true}
}

func (s *Store) journalSwap(fromSymbol string, fromAmount decimal.Decimal, toSymbol string, toAmount decimal.Decimal) {
	if s.journal == nil {
		return
	}

	record := domain.SwapRecord{
		ID:         uuid.New().String(),
		FromSymbol: fromSymbol,
		FromAmount: fromAmount.String(),
		ToSymbol:   toSymbol,
		ToAmount:   toAmount.String(),
		ExecutedAt: time.Now().UTC(),
	}
	if err := s.journal.Append(record); err != nil {
		s.logger.Warn("failed to journal swap", zap.Error(err))
	}
}
