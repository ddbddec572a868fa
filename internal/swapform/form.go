// Package swapform implements the swap submission logic: amount parsing,
// validation against balances and prices, and the commit call.
package swapform

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"swapwallet/internal/domain"
	"swapwallet/internal/services/valuation"
)

// User-facing validation and failure messages.
const (
	MsgInvalidNumber       = "please enter a valid number"
	MsgAmountNotPositive   = "amount must be greater than zero"
	MsgInsufficientBalance = "insufficient balance for this swap"
	MsgSameCurrency        = "cannot swap the same currency"
	MsgMissingFields       = "please fill in all fields correctly"
	MsgSwapFailed          = "swap failed, please try again"
)

type walletStore interface {
	GetBalance(symbol string) decimal.Decimal
	Swapping() bool
	ExecuteSwap(ctx context.Context, fromSymbol string, fromAmount decimal.Decimal, toSymbol string, toAmount decimal.Decimal) error
}

// Form holds the transient input of one swap attempt. It never mutates wallet
// state itself, the commit goes through the wallet store.
type Form struct {
	wallet walletStore

	From   *domain.Asset
	To     *domain.Asset
	Amount string
}

// New creates an empty form over the given wallet.
func New(wallet walletStore) *Form {
	return &Form{wallet: wallet}
}

// ValidationError returns the field-level message for the current amount, or
// an empty string. An empty amount is "no input yet" and produces no message.
func (f *Form) ValidationError() string {
	if f.Amount == "" {
		return ""
	}

	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return MsgInvalidNumber
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return MsgAmountNotPositive
	}
	if f.From != nil && f.To != nil && f.From.Symbol == f.To.Symbol {
		return MsgSameCurrency
	}
	if f.From != nil && amount.GreaterThan(f.wallet.GetBalance(f.From.Symbol)) {
		return MsgInsufficientBalance
	}

	return ""
}

// ReceiveAmount is the formatted amount the user would get, blank when either
// asset is unselected, the amount is invalid, or the rate is undefined.
func (f *Form) ReceiveAmount() string {
	amount, ok := f.receiveAmount()
	if !ok {
		return ""
	}
	return valuation.FormatAmount(amount)
}

func (f *Form) receiveAmount() (decimal.Decimal, bool) {
	if f.From == nil || f.To == nil {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	return valuation.ExchangeAmount(amount, f.From.Price, f.To.Price)
}

// RateLine is the "1 BTC = 20 ETH" caption, blank until both assets are selected.
func (f *Form) RateLine() string {
	if f.From == nil || f.To == nil {
		return ""
	}
	return valuation.RateLine(*f.From, *f.To)
}

// CanSubmit reports whether the form is complete, valid, and no swap is in flight.
func (f *Form) CanSubmit() bool {
	if f.From == nil || f.To == nil || f.Amount == "" {
		return false
	}
	amount, err := decimal.NewFromString(f.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return f.ValidationError() == "" && !f.wallet.Swapping()
}

// Balance is the held amount of the from-asset, zero when none is selected.
func (f *Form) Balance() decimal.Decimal {
	if f.From == nil {
		return decimal.Zero
	}
	return f.wallet.GetBalance(f.From.Symbol)
}

// MaxAmount fills the amount with the full balance of the from-asset.
func (f *Form) MaxAmount() {
	if f.From == nil {
		return
	}
	f.Amount = valuation.FormatAmount(f.wallet.GetBalance(f.From.Symbol))
}

// Switch reverses the swap direction, carrying the receive amount over as the
// new input so the quoted trade stays roughly equivalent.
func (f *Form) Switch() {
	received := f.ReceiveAmount()
	f.From, f.To = f.To, f.From
	if received != "" {
		f.Amount = received
	}
}

// DefaultFrom picks the held asset with the highest balance, the pre-selected
// "you pay" side. Nil when nothing in the catalog is held.
func (f *Form) DefaultFrom(assets []domain.Asset) *domain.Asset {
	var best *domain.Asset
	bestBalance := decimal.Zero
	for i := range assets {
		balance := f.wallet.GetBalance(assets[i].Symbol)
		if balance.GreaterThan(bestBalance) {
			best = &assets[i]
			bestBalance = balance
		}
	}
	return best
}

// Submit re-validates and commits the swap. On success the amount field is
// cleared and a human-readable summary is returned. On rejection the wallet's
// message (or a generic fallback) comes back as the error.
func (f *Form) Submit(ctx context.Context) (string, error) {
	if !f.CanSubmit() {
		return "", fmt.Errorf("%s", MsgMissingFields)
	}

	amount, err := decimal.NewFromString(f.Amount)
	if err != nil {
		return "", fmt.Errorf("%s", MsgInvalidNumber)
	}

	toAmount, ok := f.receiveAmount()
	if !ok {
		return "", fmt.Errorf("%s", MsgMissingFields)
	}

	if err := f.wallet.ExecuteSwap(ctx, f.From.Symbol, amount, f.To.Symbol, toAmount); err != nil {
		return "", err
	}

	summary := fmt.Sprintf("swapped %s %s for %s %s",
		valuation.FormatAmount(amount), f.From.Symbol,
		valuation.FormatAmount(toAmount), f.To.Symbol)
	f.Amount = ""

	return summary, nil
}
