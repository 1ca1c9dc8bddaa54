package synth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/venueoracle/internal/monitor"
)

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestSeries_Shape(t *testing.T) {
	cfg := DefaultConfig(start)
	series := Series(cfg)
	require.Len(t, series, cfg.Points*3)

	groups := monitor.GroupByTimestamp(series)
	require.Len(t, groups, cfg.Points)
	for i, g := range groups {
		assert.Equal(t, start.Add(time.Duration(i)*10*time.Second), g.Timestamp)
		assert.Len(t, g.Observations, 3)
		for _, o := range g.Observations {
			assert.NoError(t, o.Validate())
		}
	}
}

func TestSeries_Deterministic(t *testing.T) {
	cfg := DefaultConfig(start)
	assert.Equal(t, Series(cfg), Series(cfg))

	other := cfg
	other.Seed = 2
	assert.NotEqual(t, Series(cfg), Series(other))
}

func TestSeries_FlashWindowDrainsDEX(t *testing.T) {
	cfg := DefaultConfig(start)
	from, to := cfg.FlashWindow()
	assert.Equal(t, 33, from)
	assert.Equal(t, 36, to)

	for i, g := range monitor.GroupByTimestamp(Series(cfg)) {
		dex := g.Observations[2]
		require.Equal(t, "DEX_POOL", dex.Venue)
		if i >= from && i <= to {
			assert.GreaterOrEqual(t, dex.Liquidity, cfg.DrainMin)
			assert.LessOrEqual(t, dex.Liquidity, cfg.DrainMax)
		} else {
			assert.GreaterOrEqual(t, dex.Liquidity, 150_000.0)
		}
	}
}

func TestPairs(t *testing.T) {
	cfg := DefaultPairConfig(start)
	pairs := Pairs(cfg)
	require.Len(t, pairs, 50)
	assert.Equal(t, start.Add(20*time.Second), pairs[1].Timestamp)
	assert.Equal(t, pairs, Pairs(cfg))
	for _, p := range pairs {
		assert.Greater(t, p.CEX, 0.0)
		assert.Greater(t, p.DEX, 0.0)
	}
}
