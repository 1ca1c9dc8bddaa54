package amm

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestPool_Price(t *testing.T) {
	p := Pool{ReserveIn: d(100), ReserveOut: d(200_000)}
	price, err := p.Price()
	require.NoError(t, err)
	assert.True(t, price.Equal(d(2000)), "got %s", price)

	_, err = Pool{ReserveIn: d(0), ReserveOut: d(1)}.Price()
	assert.ErrorIs(t, err, ErrInvalidReserves)
}

func TestPool_SwapThinPool(t *testing.T) {
	p := Pool{ReserveIn: d(100), ReserveOut: d(200_000)}
	res, err := p.Swap(d(40), DefaultFeeBps)
	require.NoError(t, err)

	out, _ := res.AmountOut.Float64()
	assert.InDelta(t, 39.88*200_000/139.88, out, 1e-6)
	assert.True(t, res.Pool.ReserveIn.Equal(d(140)))

	// k grows slightly because the fee stays in the pool
	kBefore := p.ReserveIn.Mul(p.ReserveOut)
	kAfter := res.Pool.ReserveIn.Mul(res.Pool.ReserveOut)
	assert.True(t, kAfter.GreaterThan(kBefore))

	before, _ := p.Price()
	after, err := res.Pool.Price()
	require.NoError(t, err)
	impact, _ := ImpactPct(before, after).Float64()
	assert.Less(t, impact, -40.0, "a large input on a thin pool moves price hard")
}

func TestPool_SwapZeroFee(t *testing.T) {
	p := Pool{ReserveIn: d(1000), ReserveOut: d(1000)}
	res, err := p.Swap(d(1000), 0)
	require.NoError(t, err)
	assert.True(t, res.AmountOut.Equal(d(500)), "got %s", res.AmountOut)
}

func TestPool_SwapErrors(t *testing.T) {
	p := Pool{ReserveIn: d(100), ReserveOut: d(100)}

	_, err := p.Swap(d(0), DefaultFeeBps)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = p.Swap(d(1), -1)
	assert.ErrorIs(t, err, ErrInvalidFee)

	_, err = Pool{ReserveIn: d(-1), ReserveOut: d(100)}.Swap(d(1), DefaultFeeBps)
	assert.ErrorIs(t, err, ErrInvalidReserves)
}

func TestImpactPct(t *testing.T) {
	assert.True(t, ImpactPct(d(2000), d(1000)).Equal(d(-50)))
	assert.True(t, ImpactPct(d(0), d(1000)).IsZero())
}
