package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joanasofia03/projeto-associacao-mosense-sub000/internal/models"
)

func TestNextNumberEmptyDay(t *testing.T) {
	alloc := NewSequenceAllocator(newFakeOrderStore())

	n, err := alloc.NextNumber("2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextNumberFollowsDayMax(t *testing.T) {
	store := newFakeOrderStore()
	require.NoError(t, store.InsertOrderHeader(&models.Order{
		CreatedDateKey:      "2026-08-29",
		DailySequenceNumber: 41,
		State:               models.OrderStateConfirmed,
	}))

	alloc := NewSequenceAllocator(store)

	n, err := alloc.NextNumber("2026-08-29")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	// outro dia não é afetado
	n, err = alloc.NextNumber("2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDateKeyUsesCreationInstant(t *testing.T) {
	ts := time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2026-08-29", DateKey(ts))
	assert.Equal(t, "2026-08-30", DateKey(ts.Add(time.Second)))
}
