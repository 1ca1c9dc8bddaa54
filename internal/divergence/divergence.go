// Package divergence compares DEX-implied prices against a centralized baseline.
package divergence

import (
	"math"
	"time"

	"github.com/rewired-gh/venueoracle/internal/synth"
)

// DefaultWarnPct is the absolute deviation that flags a point.
const DefaultWarnPct = 1.5

type Point struct {
	Timestamp    time.Time
	CEX          float64
	DEX          float64
	DeviationPct float64
	Flagged      bool
}

// Compute annotates each pair with its DEX-vs-CEX deviation. A pair with a
// non-positive CEX price has no baseline and is never flagged.
func Compute(pairs []synth.PricePair, warnPct float64) []Point {
	points := make([]Point, 0, len(pairs))
	for _, p := range pairs {
		pt := Point{Timestamp: p.Timestamp, CEX: p.CEX, DEX: p.DEX}
		if p.CEX > 0 {
			pt.DeviationPct = (p.DEX - p.CEX) / p.CEX * 100.0
			pt.Flagged = math.Abs(pt.DeviationPct) >= warnPct
		}
		points = append(points, pt)
	}
	return points
}

// CountFlagged returns how many points crossed the threshold.
func CountFlagged(points []Point) int {
	n := 0
	for _, p := range points {
		if p.Flagged {
			n++
		}
	}
	return n
}
