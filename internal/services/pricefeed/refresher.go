package pricefeed

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwallet/internal/domain"
	"swapwallet/pkg/backoff"
)

// defaultStaleTime mirrors the feed's upstream cache window.
const defaultStaleTime = 5 * time.Minute

type fetcher interface {
	Fetch(ctx context.Context) ([]domain.PriceEntry, error)
}

type normalizer interface {
	Normalize(entries []domain.PriceEntry) []domain.Asset
}

// Refresher is the caching layer between the feed and the rest of the core.
// It serves the last good catalog while it is fresh and retries fetches with
// backoff, so callers never implement retry logic themselves.
type Refresher struct {
	client     fetcher
	normalizer normalizer
	policy     backoff.Policy
	staleTime  time.Duration
	logger     *zap.Logger

	mu        sync.RWMutex
	assets    []domain.Asset
	fetchedAt time.Time
}

// NewRefresher wires a feed client to a normalizer. A zero staleTime selects
// the default window.
func NewRefresher(client fetcher, n normalizer, staleTime time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if staleTime <= 0 {
		staleTime = defaultStaleTime
	}
	return &Refresher{
		client:     client,
		normalizer: n,
		policy:     backoff.Default(),
		staleTime:  staleTime,
		logger:     logger,
	}
}

// Assets returns the current catalog, refreshing it first when stale. A
// refresh failure with a previously cached catalog degrades to serving the
// stale copy.
func (r *Refresher) Assets(ctx context.Context) ([]domain.Asset, error) {
	r.mu.RLock()
	fresh := r.assets != nil && time.Since(r.fetchedAt) < r.staleTime
	cached := r.assets
	r.mu.RUnlock()

	if fresh {
		return cached, nil
	}

	if err := r.Refresh(ctx); err != nil {
		if cached != nil {
			r.logger.Warn("price refresh failed, serving stale catalog", zap.Error(err))
			return cached, nil
		}
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assets, nil
}

// Refresh forces a feed fetch with retries and replaces the catalog wholesale.
func (r *Refresher) Refresh(ctx context.Context) error {
	entries, err := backoff.RetryValue(ctx, r.policy, func(ctx context.Context) ([]domain.PriceEntry, error) {
		return r.client.Fetch(ctx)
	})
	if err != nil {
		return err
	}

	assets := r.normalizer.Normalize(entries)

	r.mu.Lock()
	r.assets = assets
	r.fetchedAt = time.Now()
	r.mu.Unlock()

	r.logger.Info("price catalog refreshed", zap.Int("assets", len(assets)))
	return nil
}

// Prices returns the current symbol to price mapping for valuation.
func (r *Refresher) Prices() map[string]decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prices := make(map[string]decimal.Decimal, len(r.assets))
	for _, a := range r.assets {
		prices[a.Symbol] = a.Price
	}
	return prices
}

// Run refreshes the catalog on the given interval until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Warn("scheduled price refresh failed", zap.Error(err))
			}
		}
	}
}
