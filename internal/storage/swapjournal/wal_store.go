// Package swapjournal keeps an append-only record of committed swaps.
package swapjournal

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"swapwallet/internal/domain"
)

const (
	defaultJournalDir   = "./wal/swaps"
	journalSegmentLimit = 1000
	journalMaxSegments  = 100
	journalKeyPrefix    = "swap_"
)

// WALStore persists swap records in a WAL for audit and streaming purposes.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed swap journal under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultJournalDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "journal_",
		SegmentThreshold: journalSegmentLimit,
		MaxSegments:      journalMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init swap journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Append writes one committed swap to the journal.
func (s *WALStore) Append(record domain.SwapRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("swap journal is not initialized")
	}
	if record.ID == "" {
		return errors.New("swap record id is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal swap record")
	}

	key := journalKeyPrefix + record.ID

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RecordsAfter returns all swaps written after the provided WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]domain.SwapRecordEntry, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("swap journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.SwapRecordEntry, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || !strings.HasPrefix(key, journalKeyPrefix) {
			continue
		}
		var record domain.SwapRecord
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, errors.Wrap(err, "decode swap record")
		}
		records = append(records, domain.SwapRecordEntry{
			Index:  idx,
			Record: record,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("swap journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
