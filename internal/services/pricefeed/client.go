// Package pricefeed fetches and caches raw currency prices from the public feed.
package pricefeed

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"swapwallet/internal/domain"
)

// FeedError reports a non-2xx response from the price feed.
type FeedError struct {
	Status  int
	Message string
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// feedEntry is the wire shape of a single feed record.
type feedEntry struct {
	Currency string           `json:"currency"`
	Date     time.Time        `json:"date"`
	Price    *decimal.Decimal `json:"price"`
}

// Client pulls price batches over HTTP.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a feed client for the given prices URL.
func NewClient(url string) *Client {
	return &Client{
		http: resty.New().SetTimeout(10 * time.Second),
		url:  url,
	}
}

// Fetch retrieves one raw price batch. Entries without a price keep
// HasPrice=false so the normalizer can drop them; nothing is filtered here.
func (c *Client) Fetch(ctx context.Context) ([]domain.PriceEntry, error) {
	var raw []feedEntry

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&raw).
		Get(c.url)
	if err != nil {
		return nil, errors.Wrap(err, "fetch prices")
	}
	if resp.IsError() {
		return nil, &FeedError{
			Status:  resp.StatusCode(),
			Message: "price feed request failed",
		}
	}

	entries := make([]domain.PriceEntry, 0, len(raw))
	for _, r := range raw {
		entry := domain.PriceEntry{
			Symbol:     r.Currency,
			ObservedAt: r.Date,
		}
		if r.Price != nil {
			entry.Price = *r.Price
			entry.HasPrice = true
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
