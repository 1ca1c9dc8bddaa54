// Package synth generates deterministic synthetic venue series for demos and tests.
package synth

import (
	"math/rand/v2"
	"time"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// Venue describes one simulated venue: its quote noise and liquidity range.
type Venue struct {
	Name         string
	Noise        float64
	LiquidityMin float64
	LiquidityMax float64
	// Flashable venues receive the injected spike and drain.
	Flashable bool
}

// DefaultVenues are two centralized venues and one thin DEX pool.
func DefaultVenues() []Venue {
	return []Venue{
		{Name: "CEX_A", Noise: 1.5, LiquidityMin: 800_000, LiquidityMax: 1_200_000},
		{Name: "CEX_B", Noise: 2.0, LiquidityMin: 400_000, LiquidityMax: 800_000},
		{Name: "DEX_POOL", Noise: 3.0, LiquidityMin: 150_000, LiquidityMax: 350_000, Flashable: true},
	}
}

type Config struct {
	Start     time.Time
	Points    int
	Seed      uint64
	BasePrice float64
	Drift     float64
	Noise     float64
	Step      time.Duration
	Venues    []Venue

	// FlashStart < 0 places the spike at 55% of the series.
	FlashStart    int
	FlashLength   int
	FlashMultiple float64
	DrainMin      float64
	DrainMax      float64
}

func DefaultConfig(start time.Time) Config {
	return Config{
		Start:         start,
		Points:        60,
		Seed:          1,
		BasePrice:     2000,
		Drift:         0.2,
		Noise:         3.0,
		Step:          10 * time.Second,
		Venues:        DefaultVenues(),
		FlashStart:    -1,
		FlashLength:   4,
		FlashMultiple: 1.12,
		DrainMin:      30_000,
		DrainMax:      60_000,
	}
}

// FlashWindow returns the first and last index carrying the injected spike.
func (c Config) FlashWindow() (int, int) {
	start := c.FlashStart
	if start < 0 {
		start = int(float64(c.Points) * 0.55)
	}
	return start, start + c.FlashLength - 1
}

// Series produces Points timestamps with one observation per venue each, in
// timestamp order. The same Config always yields the same series.
func Series(cfg Config) []models.VenueObservation {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	flashFrom, flashTo := cfg.FlashWindow()

	out := make([]models.VenueObservation, 0, cfg.Points*len(cfg.Venues))
	price := cfg.BasePrice
	for i := 0; i < cfg.Points; i++ {
		price += cfg.Drift + rng.NormFloat64()*cfg.Noise
		ts := cfg.Start.Add(time.Duration(i) * cfg.Step)

		for _, v := range cfg.Venues {
			p := price + rng.NormFloat64()*v.Noise
			liq := uniform(rng, v.LiquidityMin, v.LiquidityMax)
			if v.Flashable && i >= flashFrom && i <= flashTo {
				p *= cfg.FlashMultiple
				liq = uniform(rng, cfg.DrainMin, cfg.DrainMax)
			}
			out = append(out, models.VenueObservation{
				Timestamp: ts,
				Venue:     v.Name,
				Price:     p,
				Liquidity: liq,
			})
		}
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
