// Package web exposes the wallet, the asset catalog, and swap submission over
// HTTP, plus an SSE stream of committed swaps.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swapwallet/internal/domain"
	"swapwallet/internal/services/valuation"
	"swapwallet/internal/swapform"
	"swapwallet/internal/wallet"
)

const journalPollInterval = 2 * time.Second

type assetProvider interface {
	Assets(ctx context.Context) ([]domain.Asset, error)
	Prices() map[string]decimal.Decimal
}

type journalReader interface {
	RecordsAfter(index uint64) ([]domain.SwapRecordEntry, error)
}

// Server wires the HTTP endpoints.
type Server struct {
	addr    string
	wallet  *wallet.Store
	assets  assetProvider
	journal journalReader
	logger  *zap.Logger
}

// NewServer creates a web server instance.
func NewServer(addr string, w *wallet.Store, assets assetProvider, journal journalReader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{addr: addr, wallet: w, assets: assets, journal: journal, logger: logger}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler returns the route table, exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/assets", s.handleAssets)
	mux.HandleFunc("GET /api/wallet", s.handleWallet)
	mux.HandleFunc("POST /api/swap", s.handleSwap)
	mux.HandleFunc("GET /swaps/stream", s.handleSwapStream)
	return mux
}

type assetPayload struct {
	Symbol  string `json:"symbol"`
	Price   string `json:"price"`
	IconURL string `json:"icon_url"`
}

func (s *Server) handleAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.Assets(r.Context())
	if err != nil {
		s.logger.Warn("asset catalog unavailable", zap.Error(err))
		writeError(w, http.StatusBadGateway, "price feed unavailable")
		return
	}

	payload := make([]assetPayload, 0, len(assets))
	for _, a := range assets {
		payload = append(payload, assetPayload{
			Symbol:  a.Symbol,
			Price:   a.Price.String(),
			IconURL: a.IconURL,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

type walletPayload struct {
	Balances   map[string]string `json:"balances"`
	TotalValue string            `json:"total_value"`
	Swapping   bool              `json:"swapping"`
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	balances := s.wallet.Balances()

	payload := walletPayload{
		Balances:   make(map[string]string, len(balances)),
		TotalValue: valuation.FormatAmount(s.wallet.TotalValue(s.assets.Prices())),
		Swapping:   s.wallet.Swapping(),
	}
	for symbol, amount := range balances {
		payload.Balances[symbol] = amount.String()
	}
	writeJSON(w, http.StatusOK, payload)
}

type swapPayload struct {
	FromSymbol string `json:"from_symbol"`
	ToSymbol   string `json:"to_symbol"`
	Amount     string `json:"amount"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assets, err := s.assets.Assets(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "price feed unavailable")
		return
	}

	form := swapform.New(s.wallet)
	form.From = findAsset(assets, req.FromSymbol)
	form.To = findAsset(assets, req.ToSymbol)
	form.Amount = req.Amount

	if msg := form.ValidationError(); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	summary, err := form.Submit(r.Context())
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, domain.ErrSwapInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": summary})
}

func (s *Server) handleSwapStream(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "swap journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// comment heartbeat keeps proxies from closing the stream
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(journalPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendRecords := func() error {
		entries, err := s.journal.RecordsAfter(lastIndex)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			payload, err := json.Marshal(entry.Record)
			if err != nil {
				return err
			}
			if _, err := w.Write([]byte("event: swap\ndata: " + string(payload) + "\n\n")); err != nil {
				return err
			}
			flusher.Flush()
			lastIndex = entry.Index
		}
		return nil
	}

	if err := sendRecords(); err != nil {
		s.logger.Warn("swap stream initial load failed", zap.Error(err))
		http.Error(w, "failed to load swap history", http.StatusInternalServerError)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendRecords(); err != nil {
				s.logger.Warn("swap stream poll failed", zap.Error(err))
				return
			}
		}
	}
}

func findAsset(assets []domain.Asset, symbol string) *domain.Asset {
	for i := range assets {
		if assets[i].Symbol == symbol {
			return &assets[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
