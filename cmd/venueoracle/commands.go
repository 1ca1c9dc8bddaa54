package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/venueoracle/internal/amm"
	"github.com/rewired-gh/venueoracle/internal/divergence"
	"github.com/rewired-gh/venueoracle/internal/logger"
	"github.com/rewired-gh/venueoracle/internal/report"
	"github.com/rewired-gh/venueoracle/internal/swaptrace"
	"github.com/rewired-gh/venueoracle/internal/synth"
)

func newDivergenceCmd() *cobra.Command {
	var (
		points  int
		seed    uint64
		warnPct float64
	)
	cmd := &cobra.Command{
		Use:   "divergence",
		Short: "Compare a synthetic CEX series with a DEX-implied series",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			pc := synth.DefaultPairConfig(time.Now().UTC().Truncate(time.Second))
			pc.Points = points
			pc.Seed = seed
			pts := divergence.Compute(synth.Pairs(pc), warnPct)
			logger.Debug("Computed %d divergence points (warn: %.2f%%)", len(pts), warnPct)
			return report.WriteDivergence(os.Stdout, pts)
		},
	}
	cmd.Flags().IntVar(&points, "points", 50, "Number of points to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Generator seed")
	cmd.Flags().Float64Var(&warnPct, "warn-pct", divergence.DefaultWarnPct, "Absolute deviation percentage that flags a point")
	return cmd
}

func newAMMCmd() *cobra.Command {
	var (
		reserveIn  string
		reserveOut string
		amountIn   string
		feeBps     int64
	)
	cmd := &cobra.Command{
		Use:   "amm",
		Short: "Simulate a constant-product swap and report its price impact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			pool, amount, err := parsePool(reserveIn, reserveOut, amountIn)
			if err != nil {
				return err
			}
			before, err := pool.Price()
			if err != nil {
				return err
			}
			res, err := pool.Swap(amount, feeBps)
			if err != nil {
				return fmt.Errorf("swap failed: %w", err)
			}
			after, err := res.Pool.Price()
			if err != nil {
				return err
			}

			fmt.Printf("Initial price: %s\n", before.StringFixed(6))
			fmt.Printf("Amount out:    %s\n", res.AmountOut.StringFixed(6))
			fmt.Printf("New reserves:  %s / %s\n", res.Pool.ReserveIn.StringFixed(6), res.Pool.ReserveOut.StringFixed(6))
			fmt.Printf("New price:     %s\n", after.StringFixed(6))
			fmt.Printf("Price impact:  %s%%\n", amm.ImpactPct(before, after).StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&reserveIn, "reserve-in", "1000", "Input token reserve")
	cmd.Flags().StringVar(&reserveOut, "reserve-out", "2000000", "Output token reserve")
	cmd.Flags().StringVar(&amountIn, "amount", "200", "Input amount to swap")
	cmd.Flags().Int64Var(&feeBps, "fee-bps", amm.DefaultFeeBps, "Pool fee in basis points")
	return cmd
}

func parsePool(reserveIn, reserveOut, amountIn string) (amm.Pool, decimal.Decimal, error) {
	in, err := decimal.NewFromString(reserveIn)
	if err != nil {
		return amm.Pool{}, decimal.Zero, fmt.Errorf("invalid reserve-in: %w", err)
	}
	out, err := decimal.NewFromString(reserveOut)
	if err != nil {
		return amm.Pool{}, decimal.Zero, fmt.Errorf("invalid reserve-out: %w", err)
	}
	amount, err := decimal.NewFromString(amountIn)
	if err != nil {
		return amm.Pool{}, decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	return amm.Pool{ReserveIn: in, ReserveOut: out}, amount, nil
}

func newSwapsCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "swaps",
		Short: "Decode swap logs and tally per-pool flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			raw := swaptrace.SampleLogs()
			if input != "" {
				data, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", input, err)
				}
				if raw, err = swaptrace.Decode(data); err != nil {
					return err
				}
			}
			events := swaptrace.Parse(raw)
			logger.Debug("Parsed %d of %d log entries", len(events), len(raw))
			return report.WriteSwapSummary(os.Stdout, swaptrace.Summarize(events))
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "JSON array of raw logs (defaults to built-in samples)")
	return cmd
}
