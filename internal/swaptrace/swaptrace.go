// Package swaptrace decodes swap and transfer logs and tallies per-pool flows.
package swaptrace

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	EventSwap     = "SWAP"
	EventTransfer = "TRANSFER"
)

// RawLog is an undecoded log entry as delivered by a log source.
type RawLog struct {
	TxHash    string  `json:"tx_hash"`
	EventType string  `json:"event_type"`
	Pool      string  `json:"pool"`
	TokenIn   string  `json:"token_in"`
	TokenOut  string  `json:"token_out"`
	AmountIn  float64 `json:"amount_in"`
	AmountOut float64 `json:"amount_out"`
}

// Event is a recognized log entry.
type Event RawLog

// PoolSummary maps "<token>_sold" and "<token>_bought" to totals.
type PoolSummary map[string]float64

// Decode parses a JSON array of raw logs.
func Decode(data []byte) ([]RawLog, error) {
	var logs []RawLog
	if err := json.Unmarshal(data, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}
	return logs, nil
}

// Parse keeps SWAP and TRANSFER entries and drops everything else.
func Parse(raw []RawLog) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		if r.EventType != EventSwap && r.EventType != EventTransfer {
			continue
		}
		events = append(events, Event(r))
	}
	return events
}

// Summarize tallies swap flows per pool. Transfers are ignored.
func Summarize(events []Event) map[string]PoolSummary {
	summary := make(map[string]PoolSummary)
	for _, e := range events {
		if e.EventType != EventSwap {
			continue
		}
		s, ok := summary[e.Pool]
		if !ok {
			s = make(PoolSummary)
			summary[e.Pool] = s
		}
		s[e.TokenIn+"_sold"] += e.AmountIn
		s[e.TokenOut+"_bought"] += e.AmountOut
	}
	return summary
}

// SortedPools returns summary keys in lexical order for stable output.
func SortedPools(summary map[string]PoolSummary) []string {
	pools := make([]string, 0, len(summary))
	for p := range summary {
		pools = append(pools, p)
	}
	sort.Strings(pools)
	return pools
}

// SampleLogs returns a small fixed set of decoded-looking logs.
func SampleLogs() []RawLog {
	return []RawLog{
		{TxHash: "0xabc1", EventType: EventSwap, Pool: "POOL_ETH_USDC", TokenIn: "ETH", TokenOut: "USDC", AmountIn: 1.2, AmountOut: 2400.0},
		{TxHash: "0xabc2", EventType: EventSwap, Pool: "POOL_ETH_USDC", TokenIn: "USDC", TokenOut: "ETH", AmountIn: 5000.0, AmountOut: 2.45},
		{TxHash: "0xabc3", EventType: EventSwap, Pool: "POOL_WBTC_USDC", TokenIn: "WBTC", TokenOut: "USDC", AmountIn: 0.3, AmountOut: 18_000.0},
		{TxHash: "0xabc4", EventType: EventTransfer, Pool: "POOL_ETH_USDC", TokenIn: "ETH", TokenOut: "ETH", AmountIn: 0.5, AmountOut: 0.5},
	}
}
