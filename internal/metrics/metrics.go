// Package metrics exposes Prometheus instrumentation for the detection pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rewired-gh/venueoracle/internal/models"
)

// Registry holds pipeline metrics on a private Prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Records          prometheus.Counter
	UndefinedRecords prometheus.Counter
	Flags            *prometheus.CounterVec
	RejectedGroups   prometheus.Counter
	LastBenchmark    prometheus.Gauge
	LastLiquidity    prometheus.Gauge
}

func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		Records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "venueoracle_records_total",
			Help: "Benchmark records emitted",
		}),
		UndefinedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "venueoracle_undefined_benchmarks_total",
			Help: "Records emitted without a defined benchmark price",
		}),
		Flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "venueoracle_flags_total",
			Help: "Detector flags raised by kind",
		}, []string{"flag"}),
		RejectedGroups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "venueoracle_rejected_groups_total",
			Help: "Observation groups rejected for arriving out of order",
		}),
		LastBenchmark: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "venueoracle_last_benchmark_price",
			Help: "Most recent defined benchmark price",
		}),
		LastLiquidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "venueoracle_last_total_liquidity",
			Help: "Total liquidity of the most recent record",
		}),
	}
	r.reg.MustRegister(r.Records, r.UndefinedRecords, r.Flags, r.RejectedGroups, r.LastBenchmark, r.LastLiquidity)
	return r
}

// ObserveRecord updates counters for one emitted record.
func (r *Registry) ObserveRecord(rec models.BenchmarkRecord) {
	r.Records.Inc()
	r.LastLiquidity.Set(rec.TotalLiquidity)
	if rec.Benchmark.Valid {
		r.LastBenchmark.Set(rec.Benchmark.Value)
	} else {
		r.UndefinedRecords.Inc()
	}
	for _, f := range rec.Flags() {
		r.Flags.WithLabelValues(f).Inc()
	}
}

func (r *Registry) ObserveRejected() {
	r.RejectedGroups.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
