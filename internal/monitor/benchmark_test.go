package monitor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/venueoracle/internal/models"
)

func obs(price, liq float64) models.VenueObservation {
	return models.VenueObservation{
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Venue:     "V",
		Price:     price,
		Liquidity: liq,
	}
}

func TestAggregate_WeightedAverage(t *testing.T) {
	set := []models.VenueObservation{obs(2000, 1_000_000), obs(2010, 500_000), obs(2100, 250_000)}

	benchmark, total := Aggregate(set)
	require.True(t, benchmark.Valid)
	assert.InDelta(t, 1_750_000.0, total, 1e-6)

	want := (2000*1_000_000.0 + 2010*500_000.0 + 2100*250_000.0) / 1_750_000.0
	assert.InDelta(t, want, benchmark.Value, 1e-9)
}

func TestAggregate_WeightsAndBounds(t *testing.T) {
	sets := [][]models.VenueObservation{
		{obs(1, 1)},
		{obs(100, 3), obs(50, 7)},
		{obs(2000, 1e6), obs(1990, 4e5), obs(2240, 4.5e4)},
		{obs(10, 0.0001), obs(20, 1e9), obs(15, 0)},
	}
	for _, set := range sets {
		weights := Weights(set)
		var sum float64
		for _, w := range weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-12)

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, o := range set {
			lo = math.Min(lo, o.Price)
			hi = math.Max(hi, o.Price)
		}
		benchmark, _ := Aggregate(set)
		require.True(t, benchmark.Valid)
		assert.GreaterOrEqual(t, benchmark.Value, lo-1e-9)
		assert.LessOrEqual(t, benchmark.Value, hi+1e-9)
	}
}

func TestAggregate_SingleVenue(t *testing.T) {
	benchmark, total := Aggregate([]models.VenueObservation{obs(1234.5, 42)})
	assert.Equal(t, models.SomePrice(1234.5), benchmark)
	assert.Equal(t, 42.0, total)
	assert.Equal(t, []float64{1}, Weights([]models.VenueObservation{obs(1234.5, 42)}))
}

func TestAggregate_Undefined(t *testing.T) {
	tests := []struct {
		name string
		set  []models.VenueObservation
	}{
		{"nil set", nil},
		{"empty set", []models.VenueObservation{}},
		{"zero liquidity", []models.VenueObservation{obs(2000, 0), obs(2001, 0)}},
		{"negative liquidity", []models.VenueObservation{obs(2000, 100), obs(2001, -1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			benchmark, total := Aggregate(tt.set)
			assert.False(t, benchmark.Valid)
			assert.Equal(t, 0.0, total)
			assert.Nil(t, Weights(tt.set))
		})
	}
}

func TestAggregate_NonFiniteResult(t *testing.T) {
	tests := []struct {
		name string
		set  []models.VenueObservation
	}{
		{"nan price", []models.VenueObservation{obs(2000, 100), obs(math.NaN(), 100)}},
		{"inf price", []models.VenueObservation{obs(math.Inf(1), 100)}},
		{"inf liquidity", []models.VenueObservation{obs(2000, math.Inf(1)), obs(2001, 100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			benchmark, total := Aggregate(tt.set)
			assert.False(t, benchmark.Valid)
			assert.Equal(t, 0.0, total)
		})
	}
}
