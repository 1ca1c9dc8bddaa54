package models

import (
	"strconv"
	"time"
)

// Price is a benchmark price that may be absent when no venue carried liquidity.
type Price struct {
	Value float64
	Valid bool
}

// NoPrice is the absent benchmark.
var NoPrice = Price{}

// SomePrice wraps a defined benchmark value.
func SomePrice(v float64) Price {
	return Price{Value: v, Valid: true}
}

func (p Price) String() string {
	if !p.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(p.Value, 'f', 2, 64)
}

// Flag names in the order detectors run.
const (
	FlagStale         = "STALE"
	FlagThinLiquidity = "THIN_LIQ"
	FlagFlashLoan     = "FLASH_PATTERN"
)

// BenchmarkRecord is the annotated output for one timestamp. Records are never
// mutated after emission.
type BenchmarkRecord struct {
	Timestamp      time.Time
	Benchmark      Price
	TotalLiquidity float64

	Stale         bool
	ThinLiquidity bool
	FlashLoan     bool
}

// Flags lists the raised detector flags.
func (r BenchmarkRecord) Flags() []string {
	var flags []string
	if r.Stale {
		flags = append(flags, FlagStale)
	}
	if r.ThinLiquidity {
		flags = append(flags, FlagThinLiquidity)
	}
	if r.FlashLoan {
		flags = append(flags, FlagFlashLoan)
	}
	return flags
}

// Flagged reports whether any detector fired.
func (r BenchmarkRecord) Flagged() bool {
	return r.Stale || r.ThinLiquidity || r.FlashLoan
}

// Run describes one full pass of the monitor over an input series.
type Run struct {
	ID        string
	Source    string
	StartedAt time.Time
	Records   int
	Flagged   int
}
