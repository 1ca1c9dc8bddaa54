package monitor

import "github.com/rewired-gh/venueoracle/internal/models"

const (
	// MinLiquiditySamples is the smallest liquidity history a bounded window keeps.
	MinLiquiditySamples = 10
	// MinBenchmarkSamples is the smallest benchmark history a bounded window keeps.
	MinBenchmarkSamples = 3
)

// Window stores total-liquidity and benchmark history in arrival order.
// A limit of 0 keeps everything; a positive limit turns both histories into
// ring buffers of that size.
type Window struct {
	limit      int
	liquidity  []float64
	benchmarks []models.Price
	liqIndex   int
	benchIndex int
}

func NewWindow(limit int) *Window {
	if limit > 0 && limit < MinLiquiditySamples {
		limit = MinLiquiditySamples
	}
	return &Window{limit: limit}
}

func (w *Window) RecordLiquidity(value float64) {
	w.liquidity, w.liqIndex = push(w.liquidity, w.liqIndex, value, w.limit)
}

func (w *Window) RecordBenchmark(value models.Price) {
	w.benchmarks, w.benchIndex = push(w.benchmarks, w.benchIndex, value, w.limit)
}

func push[T any](buf []T, index int, value T, limit int) ([]T, int) {
	if limit == 0 || len(buf) < limit {
		buf = append(buf, value)
	} else {
		buf[index] = value
	}
	if limit > 0 {
		index = (index + 1) % limit
	}
	return buf, index
}

// LiquidityHistory returns the retained liquidity samples, oldest first.
func (w *Window) LiquidityHistory() []float64 {
	return ordered(w.liquidity, w.liqIndex, w.limit)
}

// BenchmarkHistory returns the retained benchmarks, oldest first.
func (w *Window) BenchmarkHistory() []models.Price {
	return ordered(w.benchmarks, w.benchIndex, w.limit)
}

// LastBenchmarks returns up to n most recent benchmarks, oldest first.
func (w *Window) LastBenchmarks(n int) []models.Price {
	h := w.BenchmarkHistory()
	if len(h) > n {
		h = h[len(h)-n:]
	}
	return h
}

// Len is the number of retained samples. Both histories always agree.
func (w *Window) Len() int {
	return len(w.liquidity)
}

func ordered[T any](buf []T, index, limit int) []T {
	out := make([]T, 0, len(buf))
	if limit == 0 || len(buf) < limit {
		return append(out, buf...)
	}
	out = append(out, buf[index:]...)
	return append(out, buf[:index]...)
}
