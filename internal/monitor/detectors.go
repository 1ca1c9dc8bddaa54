package monitor

import (
	"math"
	"sort"
	"time"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// IsStale reports whether more than maxStaleness has elapsed since the last
// valid benchmark update. The comparison is strict.
func IsStale(current, lastValid time.Time, maxStaleness time.Duration) bool {
	return current.Sub(lastValid) > maxStaleness
}

// IsThin reports whether current liquidity sits strictly below the q-th
// quantile of history. It never fires before minHistory samples exist.
//
// The orchestrator appends the current sample before calling, so it takes
// part in its own quantile. This self-bias is kept on purpose; removing it
// changes which points get flagged.
func IsThin(current float64, history []float64, q float64, minHistory int) bool {
	if len(history) < minHistory || len(history) == 0 {
		return false
	}
	return current < Quantile(history, q)
}

// Quantile computes the q-th quantile using linear interpolation between the
// closest order statistics.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q = math.Min(math.Max(q, 0), 1)
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// IsFlashPattern inspects the three most recent benchmarks (oldest first) for
// an upward jump of at least spikeThresholdPct whose middle point lies closer
// to the baseline than the last one.
//
// Only upward jumps count. The reversion test never looks past the newest
// point, so any middle value between b0 and b2 passes, including a plain
// monotonic rise. It filters diverging paths rather than confirming a revert.
func IsFlashPattern(last []models.Price, spikeThresholdPct float64) bool {
	if len(last) < 3 {
		return false
	}
	b0, b1, b2 := last[len(last)-3], last[len(last)-2], last[len(last)-1]
	if !b0.Valid || !b1.Valid || !b2.Valid {
		return false
	}

	jumpPct := (b2.Value - b0.Value) / b0.Value * 100.0
	if jumpPct < spikeThresholdPct {
		return false
	}
	return math.Abs(b1.Value-b0.Value) < math.Abs(b2.Value-b0.Value)
}
