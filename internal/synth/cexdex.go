package synth

import (
	"math/rand/v2"
	"time"
)

// PricePair is one timestamp of centralized and DEX-implied prices.
type PricePair struct {
	Timestamp time.Time
	CEX       float64
	DEX       float64
}

type PairConfig struct {
	Start          time.Time
	Points         int
	Seed           uint64
	BasePrice      float64
	Drift          float64
	NoiseCEX       float64
	NoiseDEX       float64
	Step           time.Duration
	DistortionProb float64
	DistortionPct  float64
}

func DefaultPairConfig(start time.Time) PairConfig {
	return PairConfig{
		Start:          start,
		Points:         50,
		Seed:           1,
		BasePrice:      2000,
		Drift:          0.1,
		NoiseCEX:       2.0,
		NoiseDEX:       4.0,
		Step:           20 * time.Second,
		DistortionProb: 0.08,
		DistortionPct:  5.0,
	}
}

// Pairs generates a CEX baseline and a noisier DEX series with occasional
// symmetric distortions on the DEX side.
func Pairs(cfg PairConfig) []PricePair {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := make([]PricePair, 0, cfg.Points)
	price := cfg.BasePrice
	for i := 0; i < cfg.Points; i++ {
		price += cfg.Drift + rng.NormFloat64()*cfg.NoiseCEX
		cex := price + rng.NormFloat64()*cfg.NoiseCEX
		dex := price + rng.NormFloat64()*cfg.NoiseDEX
		if rng.Float64() < cfg.DistortionProb {
			sign := 1.0
			if rng.IntN(2) == 0 {
				sign = -1.0
			}
			dex *= 1 + sign*cfg.DistortionPct/100.0
		}
		out = append(out, PricePair{
			Timestamp: cfg.Start.Add(time.Duration(i) * cfg.Step),
			CEX:       cex,
			DEX:       dex,
		})
	}
	return out
}
