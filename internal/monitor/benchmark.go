package monitor

import (
	"math"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// Aggregate reduces one timestamp's observations to a liquidity-weighted
// benchmark and the total liquidity. Empty sets, negative liquidity, a
// non-positive total and a non-finite result all yield (NoPrice, 0).
func Aggregate(obs []models.VenueObservation) (models.Price, float64) {
	total, ok := totalLiquidity(obs)
	if !ok || total <= 0 {
		return models.NoPrice, 0
	}

	var benchmark float64
	for _, o := range obs {
		benchmark += (o.Liquidity / total) * o.Price
	}
	if !isFinite(benchmark) || !isFinite(total) {
		return models.NoPrice, 0
	}
	return models.SomePrice(benchmark), total
}

// Weights returns each observation's share of total liquidity, or nil when
// Aggregate would return the absent benchmark.
func Weights(obs []models.VenueObservation) []float64 {
	total, ok := totalLiquidity(obs)
	if !ok || total <= 0 || !isFinite(total) {
		return nil
	}
	w := make([]float64, len(obs))
	for i, o := range obs {
		w[i] = o.Liquidity / total
	}
	return w
}

func totalLiquidity(obs []models.VenueObservation) (float64, bool) {
	var total float64
	for _, o := range obs {
		if o.Liquidity < 0 || math.IsNaN(o.Liquidity) {
			return 0, false
		}
		total += o.Liquidity
	}
	return total, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
