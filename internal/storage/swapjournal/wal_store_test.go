package swapjournal

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapwallet/internal/domain"
)

func record(from, to string) domain.SwapRecord {
	return domain.SwapRecord{
		ID:         uuid.New().String(),
		FromSymbol: from,
		FromAmount: "50",
		ToSymbol:   to,
		ToAmount:   "0.025",
		ExecutedAt: time.Now().UTC(),
	}
}

func TestWALStore_AppendAndRead(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first := record("USD", "ETH")
	second := record("ETH", "BTC")
	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	entries, err := store.RecordsAfter(0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].Record.ID)
	assert.Equal(t, second.ID, entries[1].Record.ID)

	// resume from the middle
	entries, err = store.RecordsAfter(entries[0].Index)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].Record.ID)

	// nothing new past the end
	entries, err = store.RecordsAfter(store.CurrentIndex())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWALStore_AppendRequiresID(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	err = store.Append(domain.SwapRecord{FromSymbol: "USD", ToSymbol: "ETH"})
	assert.Error(t, err)
}

func TestWALStore_Uninitialized(t *testing.T) {
	var store *WALStore
	assert.Error(t, store.Append(record("USD", "ETH")))
	_, err := store.RecordsAfter(0)
	assert.Error(t, err)
	assert.Zero(t, store.CurrentIndex())
}
