package monitor

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/rewired-gh/venueoracle/internal/logger"
	"github.com/rewired-gh/venueoracle/internal/models"
)

type Config struct {
	MaxStaleness            time.Duration
	ThinLiquidityQuantile   float64
	ThinLiquidityMinHistory int
	FlashSpikeThresholdPct  float64
	HistoryLimit            int
}

func DefaultConfig() Config {
	return Config{
		MaxStaleness:            40 * time.Second,
		ThinLiquidityQuantile:   0.2,
		ThinLiquidityMinHistory: 10,
		FlashSpikeThresholdPct:  4.0,
		HistoryLimit:            0,
	}
}

// Recorder observes every emitted record and every rejected group.
type Recorder interface {
	ObserveRecord(rec models.BenchmarkRecord)
	ObserveRejected()
}

// DetectionState is everything the monitor carries between timestamps.
type DetectionState struct {
	LastValidUpdate time.Time
	HasValidUpdate  bool
	Window          *Window
}

// Monitor folds timestamp groups into annotated benchmark records, one per
// group, in order. It is single-use: one Monitor covers one pass.
type Monitor struct {
	config   Config
	state    DetectionState
	recorder Recorder

	lastSeen time.Time
	started  bool
	err      error
}

// New creates a monitor with fresh detection state. recorder may be nil.
func New(config Config, recorder Recorder) *Monitor {
	return &Monitor{
		config:   config,
		state:    DetectionState{Window: NewWindow(config.HistoryLimit)},
		recorder: recorder,
	}
}

// State exposes the detection state for inspection. Callers must not mutate it.
func (m *Monitor) State() *DetectionState {
	return &m.state
}

// Process runs one AGGREGATE → UPDATE_HISTORY → DETECT → EMIT step. A group
// stamped before its predecessor fails with ErrOutOfOrderTimestamp and the
// monitor refuses all further input.
func (m *Monitor) Process(group models.ObservationGroup) (models.BenchmarkRecord, error) {
	if m.err != nil {
		return models.BenchmarkRecord{}, m.err
	}
	ts := group.Timestamp
	if m.started && ts.Before(m.lastSeen) {
		m.err = fmt.Errorf("%w: %s after %s", models.ErrOutOfOrderTimestamp,
			ts.Format(time.RFC3339Nano), m.lastSeen.Format(time.RFC3339Nano))
		if m.recorder != nil {
			m.recorder.ObserveRejected()
		}
		return models.BenchmarkRecord{}, m.err
	}
	m.started = true
	m.lastSeen = ts

	if err := group.Validate(); err != nil {
		logger.Debug("Aggregating invalid group as undefined benchmark: %v", err)
	}
	benchmark, totalLiq := Aggregate(group.Observations)

	if !m.state.HasValidUpdate {
		m.state.LastValidUpdate = ts
		m.state.HasValidUpdate = true
	}

	w := m.state.Window
	w.RecordLiquidity(totalLiq)
	w.RecordBenchmark(benchmark)

	rec := models.BenchmarkRecord{
		Timestamp:      ts,
		Benchmark:      benchmark,
		TotalLiquidity: totalLiq,
		Stale:          IsStale(ts, m.state.LastValidUpdate, m.config.MaxStaleness),
		ThinLiquidity: IsThin(totalLiq, w.LiquidityHistory(),
			m.config.ThinLiquidityQuantile, m.config.ThinLiquidityMinHistory),
		FlashLoan: IsFlashPattern(w.LastBenchmarks(3), m.config.FlashSpikeThresholdPct),
	}

	// Staleness above saw the previous valid timestamp; advance it only now.
	if benchmark.Valid {
		m.state.LastValidUpdate = ts
	}

	if rec.Flagged() {
		logger.Debug("Flagged %s price=%s liq=%.0f flags=%v", ts.Format(time.RFC3339), benchmark, totalLiq, rec.Flags())
	}
	if m.recorder != nil {
		m.recorder.ObserveRecord(rec)
	}
	return rec, nil
}

// Records lazily yields one record per group. Iteration ends at the first
// error, which is yielded with a zero record, or when the consumer stops.
func (m *Monitor) Records(groups iter.Seq[models.ObservationGroup]) iter.Seq2[models.BenchmarkRecord, error] {
	return func(yield func(models.BenchmarkRecord, error) bool) {
		for g := range groups {
			rec, err := m.Process(g)
			if err != nil {
				yield(models.BenchmarkRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Run processes every group and returns the records emitted so far alongside
// any ordering error.
func (m *Monitor) Run(groups []models.ObservationGroup) ([]models.BenchmarkRecord, error) {
	records := make([]models.BenchmarkRecord, 0, len(groups))
	for rec, err := range m.Records(slices.Values(groups)) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	logger.Debug("Processed %d timestamp groups", len(records))
	return records, nil
}
