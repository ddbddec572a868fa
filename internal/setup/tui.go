// Package setup runs the interactive terminal swap form.
package setup

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"swapwallet/internal/domain"
	"swapwallet/internal/services/valuation"
	"swapwallet/internal/swapform"
	"swapwallet/internal/wallet"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

type assetProvider interface {
	Assets(ctx context.Context) ([]domain.Asset, error)
	Prices() map[string]decimal.Decimal
}

// RunSwapTUI drives swap submissions from the terminal until the user quits.
func RunSwapTUI(ctx context.Context, w *wallet.Store, assets assetProvider) error {
	for {
		catalog, err := assets.Assets(ctx)
		if err != nil {
			return fmt.Errorf("load asset catalog: %w", err)
		}

		fmt.Print("\033[H\033[2J") // Clear screen
		fmt.Println(headerStyle.Render("CURRENCY SWAP"))
		fmt.Println(renderWallet(w, assets))

		form := swapform.New(w)
		if def := form.DefaultFrom(catalog); def != nil {
			form.From = def
		}

		if err := pickAssets(form, catalog); err != nil {
			return err
		}
		if form.From == nil || form.To == nil {
			return fmt.Errorf("%s", swapform.MsgMissingFields)
		}

		if err := enterAmount(form); err != nil {
			return err
		}

		fmt.Println(stepStyle.Render("CONFIRM"))
		fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render(form.RateLine()))

		confirm := false
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Swap %s %s for %s %s?",
						form.Amount, form.From.Symbol, form.ReceiveAmount(), form.To.Symbol)).
					Affirmative("Swap").
					Negative("Cancel").
					Value(&confirm),
			),
		).Run()
		if err != nil {
			return err
		}

		if confirm {
			fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Settling..."))
			summary, err := form.Submit(ctx)
			if err != nil {
				fmt.Println(errStyle.Render(err.Error()))
			} else {
				fmt.Println(lipgloss.NewStyle().Foreground(special).Render(summary))
			}
		}

		again := false
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Make another swap?").
					Value(&again),
			),
		).Run()
		if err != nil || !again {
			return err
		}
	}
}

func pickAssets(form *swapform.Form, catalog []domain.Asset) error {
	fromSymbol := ""
	if form.From != nil {
		fromSymbol = form.From.Symbol
	}
	toSymbol := ""

	fromOptions := make([]huh.Option[string], 0, len(catalog))
	for _, a := range catalog {
		label := fmt.Sprintf("%s (%s USD)", a.Symbol, valuation.FormatAmount(a.Price))
		fromOptions = append(fromOptions, huh.NewOption(label, a.Symbol))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("You pay").
				Options(fromOptions...).
				Value(&fromSymbol),
			huh.NewSelect[string]().
				Title("You receive").
				Options(fromOptions...).
				Value(&toSymbol),
		),
	).Run()
	if err != nil {
		return err
	}

	for i := range catalog {
		if catalog[i].Symbol == fromSymbol {
			form.From = &catalog[i]
		}
		if catalog[i].Symbol == toSymbol {
			form.To = &catalog[i]
		}
	}
	return nil
}

func enterAmount(form *swapform.Form) error {
	balance := valuation.FormatAmount(form.Balance())

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Amount (%s, balance %s)", form.From.Symbol, balance)).
				Description("Enter how much you pay").
				Value(&form.Amount).
				Validate(func(string) error {
					if msg := form.ValidationError(); msg != "" {
						return fmt.Errorf("%s", msg)
					}
					if form.Amount == "" {
						return fmt.Errorf("%s", swapform.MsgMissingFields)
					}
					return nil
				}),
		),
	).Run()
}

func renderWallet(w *wallet.Store, assets assetProvider) string {
	prices := assets.Prices()
	summary := fmt.Sprintf("Total value: %s USD\n", valuation.FormatAmount(w.TotalValue(prices)))
	for symbol, amount := range w.Balances() {
		summary += fmt.Sprintf("%s: %s\n", symbol, valuation.FormatAmount(amount))
	}
	return lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary)
}
