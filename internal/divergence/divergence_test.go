package divergence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/venueoracle/internal/synth"
)

func TestCompute(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pairs := []synth.PricePair{
		{Timestamp: ts, CEX: 2000, DEX: 2010},
		{Timestamp: ts, CEX: 2000, DEX: 2040},
		{Timestamp: ts, CEX: 2000, DEX: 1960},
		{Timestamp: ts, CEX: 0, DEX: 1960},
	}
	points := Compute(pairs, DefaultWarnPct)
	require.Len(t, points, 4)

	assert.InDelta(t, 0.5, points[0].DeviationPct, 1e-9)
	assert.False(t, points[0].Flagged)
	assert.InDelta(t, 2.0, points[1].DeviationPct, 1e-9)
	assert.True(t, points[1].Flagged)
	assert.InDelta(t, -2.0, points[2].DeviationPct, 1e-9)
	assert.True(t, points[2].Flagged, "downward deviations count")
	assert.False(t, points[3].Flagged)

	assert.Equal(t, 2, CountFlagged(points))
}
