// Package walletstate persists wallet balances in a single named JSON slot so
// restarts keep the user's holdings.
package walletstate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultSlotName is the file name of the balance slot inside the state dir.
const DefaultSlotName = "wallet-balances.json"

// Store reads and writes the balance slot. The on-disk format is a flat JSON
// object mapping currency symbol to a non-negative number.
type Store struct {
	path string
}

// NewStore creates a store writing to dir/DefaultSlotName.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create wallet state dir")
	}
	return &Store{path: filepath.Join(dir, DefaultSlotName)}, nil
}

// Load reads the slot. A missing or empty slot returns (nil, nil) so the
// caller can fall back to default balances. Unparsable or structurally invalid
// content is reported as an error, which callers treat the same way.
func (s *Store) Load() (map[string]decimal.Decimal, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read wallet state")
	}
	if len(payload) == 0 {
		return nil, nil
	}

	var raw map[string]json.Number
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, errors.Wrap(err, "decode wallet state")
	}

	balances := make(map[string]decimal.Decimal, len(raw))
	for symbol, num := range raw {
		amount, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s balance", symbol)
		}
		if amount.IsNegative() {
			return nil, errors.Errorf("negative %s balance in wallet state", symbol)
		}
		balances[symbol] = amount
	}

	return balances, nil
}

// Save replaces the slot atomically via a temp file.
func (s *Store) Save(balances map[string]decimal.Decimal) error {
	if s == nil || s.path == "" {
		return nil
	}

	raw := make(map[string]json.Number, len(balances))
	for symbol, amount := range balances {
		raw[symbol] = json.Number(amount.String())
	}

	payload, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode wallet state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write wallet state temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist wallet state")
	}

	return nil
}
