// Package amm implements constant-product (x*y=k) pool arithmetic.
package amm

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DefaultFeeBps is the pool fee charged on the input amount.
const DefaultFeeBps = 30

var (
	ErrInvalidReserves = errors.New("reserves must be positive")
	ErrInvalidAmount   = errors.New("swap amount must be positive")
	ErrInvalidFee      = errors.New("fee must be between 0 and 10000 bps")
)

var bpsDenominator = decimal.NewFromInt(10_000)

// Pool holds the two reserves of a constant-product pool.
type Pool struct {
	ReserveIn  decimal.Decimal
	ReserveOut decimal.Decimal
}

// SwapResult is the pool after a swap and what the trader received.
type SwapResult struct {
	Pool      Pool
	AmountOut decimal.Decimal
}

// Price is the implied price of one input token in output tokens.
func (p Pool) Price() (decimal.Decimal, error) {
	if !p.ReserveIn.IsPositive() || !p.ReserveOut.IsPositive() {
		return decimal.Zero, ErrInvalidReserves
	}
	return p.ReserveOut.Div(p.ReserveIn), nil
}

// Swap sells amountIn into the pool:
//
//	inWithFee = amountIn * (1 - fee)
//	amountOut = inWithFee * reserveOut / (reserveIn + inWithFee)
//
// The full amountIn, fee included, is added to the input reserve.
func (p Pool) Swap(amountIn decimal.Decimal, feeBps int64) (SwapResult, error) {
	if !p.ReserveIn.IsPositive() || !p.ReserveOut.IsPositive() {
		return SwapResult{}, ErrInvalidReserves
	}
	if !amountIn.IsPositive() {
		return SwapResult{}, ErrInvalidAmount
	}
	if feeBps < 0 || feeBps > 10_000 {
		return SwapResult{}, ErrInvalidFee
	}

	fee := decimal.NewFromInt(feeBps).Div(bpsDenominator)
	inWithFee := amountIn.Mul(decimal.NewFromInt(1).Sub(fee))
	amountOut := inWithFee.Mul(p.ReserveOut).Div(p.ReserveIn.Add(inWithFee))

	return SwapResult{
		Pool: Pool{
			ReserveIn:  p.ReserveIn.Add(amountIn),
			ReserveOut: p.ReserveOut.Sub(amountOut),
		},
		AmountOut: amountOut,
	}, nil
}

// ImpactPct is the percentage move from before to after.
func ImpactPct(before, after decimal.Decimal) decimal.Decimal {
	if before.IsZero() {
		return decimal.Zero
	}
	return after.Sub(before).Div(before).Mul(decimal.NewFromInt(100))
}
