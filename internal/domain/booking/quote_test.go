package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuote(t *testing.T) {
	// A 4-night stay at 3 tokens per night costs 12, the End date being the
	// checkout day rather than a fifth occupied night.
	q, err := NewQuote(stay(t, "2025-06-10", "2025-06-14"), 3)
	require.NoError(t, err)

	assert.Equal(t, 4, q.Nights)
	assert.Equal(t, int64(3), q.PricePerNight)
	assert.Equal(t, int64(12), q.Total)
}

func TestNewQuote_Validation(t *testing.T) {
	_, err := NewQuote(stay(t, "2025-06-10", "2025-06-10"), 3)
	assert.Error(t, err, "zero nights")

	_, err = NewQuote(stay(t, "2025-06-10", "2025-06-14"), 0)
	assert.Error(t, err, "non-positive nightly price")
}

func TestQuoteMatches(t *testing.T) {
	q, err := NewQuote(stay(t, "2025-06-10", "2025-06-14"), 3)
	require.NoError(t, err)

	assert.True(t, q.Matches(12))
	assert.False(t, q.Matches(11), "a stale client quote must be rejected")
}
