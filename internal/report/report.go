// Package report renders pipeline output for the console.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/rewired-gh/venueoracle/internal/divergence"
	"github.com/rewired-gh/venueoracle/internal/models"
	"github.com/rewired-gh/venueoracle/internal/swaptrace"
)

// Header opens a benchmark record listing.
const Header = "=== Benchmark Anomaly Report ==="

// Summary tallies flags over a run.
type Summary struct {
	Records   int
	Undefined int
	Stale     int
	Thin      int
	Flash     int
	// Flagged counts records carrying at least one flag.
	Flagged int
}

func Summarize(records []models.BenchmarkRecord) Summary {
	s := Summary{Records: len(records)}
	for _, r := range records {
		if !r.Benchmark.Valid {
			s.Undefined++
		}
		if r.Stale {
			s.Stale++
		}
		if r.ThinLiquidity {
			s.Thin++
		}
		if r.FlashLoan {
			s.Flash++
		}
		if r.Flagged() {
			s.Flagged++
		}
	}
	return s
}

// RecordLine formats one benchmark record.
func RecordLine(r models.BenchmarkRecord) string {
	flags := "-"
	if f := r.Flags(); len(f) > 0 {
		flags = strings.Join(f, ", ")
	}
	return fmt.Sprintf("%s  price=%8s  liq=%10s  flags=[%s]",
		r.Timestamp.UTC().Format(time.RFC3339), r.Benchmark, humanize.SIWithDigits(r.TotalLiquidity, 2, ""), flags)
}

// WriteRecords writes one line per record followed by a summary.
func WriteRecords(w io.Writer, records []models.BenchmarkRecord) error {
	if _, err := fmt.Fprintln(w, Header); err != nil {
		return err
	}
	for _, r := range records {
		if _, err := fmt.Fprintln(w, RecordLine(r)); err != nil {
			return err
		}
	}
	return WriteSummary(w, Summarize(records))
}

// WriteSummary writes the closing tally line, preceded by a blank line.
func WriteSummary(w io.Writer, s Summary) error {
	_, err := fmt.Fprintf(w, "\n%s records, %d undefined, %d stale, %d thin liquidity, %d flash pattern\n",
		humanize.Comma(int64(s.Records)), s.Undefined, s.Stale, s.Thin, s.Flash)
	return err
}

// WriteRuns lists stored runs, one per line.
func WriteRuns(w io.Writer, runs []*models.Run) error {
	if _, err := fmt.Fprintln(w, "=== Stored runs ==="); err != nil {
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "%s  %s  records=%s  flagged=%d  source=%s\n",
			r.ID, r.StartedAt.UTC().Format(time.RFC3339), humanize.Comma(int64(r.Records)), r.Flagged, r.Source); err != nil {
			return err
		}
	}
	return nil
}

// WriteDivergence writes CEX/DEX divergence points and the flagged count.
func WriteDivergence(w io.Writer, points []divergence.Point) error {
	if _, err := fmt.Fprintln(w, "=== CEX-DEX Divergence ==="); err != nil {
		return err
	}
	for _, p := range points {
		marker := "OK"
		if p.Flagged {
			marker = "FLAG"
		}
		if _, err := fmt.Fprintf(w, "%s  CEX=%8.2f  DEX=%8.2f  dev=%6.2f%%  [%s]\n",
			p.Timestamp.UTC().Format(time.RFC3339), p.CEX, p.DEX, p.DeviationPct, marker); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nFlagged %d / %d points above threshold.\n", divergence.CountFlagged(points), len(points))
	return err
}

// WriteSwapSummary writes per-pool net flows in pool and key order.
func WriteSwapSummary(w io.Writer, summary map[string]swaptrace.PoolSummary) error {
	if _, err := fmt.Fprintln(w, "=== Per-pool swap flows ==="); err != nil {
		return err
	}
	for _, pool := range swaptrace.SortedPools(summary) {
		if _, err := fmt.Fprintf(w, "%s:\n", pool); err != nil {
			return err
		}
		stats := summary[pool]
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", k, humanize.FormatFloat("#,###.####", stats[k])); err != nil {
				return err
			}
		}
	}
	return nil
}
