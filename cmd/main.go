// Command swapwallet serves a demo currency swap wallet: balances live in a
// persisted local slot, prices come from a public feed, and swaps settle after
// a fixed artificial delay.
//
// Usage:
//
//	swapwallet --config config.yaml
//	swapwallet --listen :8080
//	swapwallet --tui
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"swapwallet/config"
	"swapwallet/internal/services/catalog"
	"swapwallet/internal/services/pricefeed"
	"swapwallet/internal/setup"
	"swapwallet/internal/storage/swapjournal"
	"swapwallet/internal/storage/walletstate"
	"swapwallet/internal/wallet"
	"swapwallet/internal/web"
)

const defaultRefreshInterval = 5 * time.Minute

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slot, err := walletstate.NewStore(cfg.StateDir)
	if err != nil {
		logger.Fatal("failed to open wallet state store", zap.Error(err))
	}

	journal, err := swapjournal.NewWALStore(cfg.JournalDir)
	if err != nil {
		logger.Fatal("failed to open swap journal", zap.Error(err))
	}
	defer journal.Close()

	feed := pricefeed.NewClient(cfg.FeedURL)
	normalizer := catalog.NewNormalizer(cfg.IconBaseURL)
	refresher := pricefeed.NewRefresher(feed, normalizer, cfg.StaleTime, logger)

	w := wallet.New(wallet.Config{
		BaseCurrency:    cfg.BaseCurrency,
		SettleDelay:     cfg.SettleDelay,
		InitialBalances: cfg.InitialBalances,
	}, slot, journal, logger)

	if err := refresher.Refresh(ctx); err != nil {
		logger.Warn("initial price fetch failed, catalog starts empty", zap.Error(err))
	}

	if cfg.TUI {
		if err := setup.RunSwapTUI(ctx, w, refresher); err != nil {
			logger.Fatal("swap form failed", zap.Error(err))
		}
		return
	}

	refreshInterval := cfg.RefreshInterval
	if refreshInterval <= 0 {
		refreshInterval = defaultRefreshInterval
	}

	server := web.NewServer(cfg.ListenAddr, w, refresher, journal, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		return server.Start(gctx)
	})
	g.Go(func() error {
		err := refresher.Run(gctx, refreshInterval)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error(err.Error())
	}
}
