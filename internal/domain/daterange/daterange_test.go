package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse("2025-06-01", "2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", r.StartDate())
	assert.Equal(t, "2025-06-10", r.EndDate())
	assert.Equal(t, 9, r.Nights())
}

func TestParse_RejectsMalformedDates(t *testing.T) {
	_, err := Parse("June 1st", "2025-06-10")
	assert.Error(t, err)

	_, err = Parse("2025-06-01", "10/06/2025")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	ts := time.Date(2025, 6, 2, 1, 30, 0, 0, loc) // 2025-06-01 17:30 UTC

	got := Truncate(ts)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	mk := func(start, end string) DateRange {
		r, err := Parse(start, end)
		require.NoError(t, err)
		return r
	}

	tests := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{"identical", mk("2025-06-01", "2025-06-05"), mk("2025-06-01", "2025-06-05"), true},
		{"contained", mk("2025-06-01", "2025-06-10"), mk("2025-06-03", "2025-06-05"), true},
		{"partial", mk("2025-06-01", "2025-06-05"), mk("2025-06-04", "2025-06-08"), true},
		{"back to back", mk("2025-06-01", "2025-06-05"), mk("2025-06-05", "2025-06-10"), false},
		{"disjoint", mk("2025-06-01", "2025-06-05"), mk("2025-06-20", "2025-06-25"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestOverlapsInclusive(t *testing.T) {
	a, err := Parse("2025-05-01", "2025-05-20")
	require.NoError(t, err)
	b, err := Parse("2025-05-20", "2025-06-05")
	require.NoError(t, err)

	// Sharing a single calendar date counts as overlap in the inclusive
	// reading, unlike the half-open one.
	assert.True(t, a.OverlapsInclusive(b))
	assert.False(t, a.Overlaps(b))
}

func TestCovers(t *testing.T) {
	period, err := Parse("2025-06-01", "2025-06-30")
	require.NoError(t, err)

	inside, _ := Parse("2025-06-05", "2025-06-10")
	exact, _ := Parse("2025-06-01", "2025-06-30")
	spillsOver, _ := Parse("2025-06-25", "2025-07-02")

	assert.True(t, period.Covers(inside))
	assert.True(t, period.Covers(exact))
	assert.False(t, period.Covers(spillsOver))
}
