package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rewired-gh/venueoracle/internal/models"
)

func TestRegistry_ObserveRecord(t *testing.T) {
	r := NewRegistry()

	r.ObserveRecord(models.BenchmarkRecord{Benchmark: models.SomePrice(2000), TotalLiquidity: 1.8e6})
	r.ObserveRecord(models.BenchmarkRecord{Benchmark: models.NoPrice, Stale: true})
	r.ObserveRecord(models.BenchmarkRecord{Benchmark: models.SomePrice(2240), TotalLiquidity: 1.6e6,
		ThinLiquidity: true, FlashLoan: true})
	r.ObserveRejected()

	assert.Equal(t, 3.0, testutil.ToFloat64(r.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.UndefinedRecords))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Flags.WithLabelValues(models.FlagStale)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Flags.WithLabelValues(models.FlagThinLiquidity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Flags.WithLabelValues(models.FlagFlashLoan)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RejectedGroups))
	assert.Equal(t, 2240.0, testutil.ToFloat64(r.LastBenchmark))
	assert.Equal(t, 1.6e6, testutil.ToFloat64(r.LastLiquidity))
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveRecord(models.BenchmarkRecord{Benchmark: models.SomePrice(1), FlashLoan: true})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `venueoracle_flags_total{flag="FLASH_PATTERN"} 1`), body)
	assert.True(t, strings.Contains(body, "venueoracle_records_total 1"), body)
}
