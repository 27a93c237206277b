package trading

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuySizingRaisesToMinimumThenSkips(t *testing.T) {
	// 10% of 4000 is 400, raised to the 5000 minimum, which the balance
	// cannot cover: a no-op, not an error.
	_, ok := buySizing(4000, 50000, 0.10, 5000)
	require.False(t, ok)

	// 10% of 60000 is 6000, above the minimum and within the balance.
	volume, ok := buySizing(60000, 50000, 0.10, 5000)
	require.True(t, ok)
	require.InDelta(t, 0.12, volume, 1e-9)

	// 10% of 49000 is 4900, raised to 5000, still affordable.
	volume, ok = buySizing(49000, 50000, 0.10, 5000)
	require.True(t, ok)
	require.InDelta(t, 0.1, volume, 1e-9)
}

func TestBuySizingNotionalRespectsBounds(t *testing.T) {
	cases := []struct {
		available, price float64
	}{
		{5000, 84000000},
		{10000, 84000000},
		{123456.789, 50000},
		{5000000, 100},
	}
	for _, tc := range cases {
		volume, ok := buySizing(tc.available, tc.price, 0.10, 5000)
		if !ok {
			continue
		}
		notional := volume * tc.price
		// Truncation can shave at most one price unit of 1e-8 volume.
		require.GreaterOrEqual(t, notional, 5000-tc.price*1e-8)
		require.LessOrEqual(t, notional, tc.available)
	}
}

func TestBuySizingTruncatesVolume(t *testing.T) {
	// 10000 / 3 = 3333.33... truncated, never rounded up.
	volume, ok := buySizing(100000, 3, 0.10, 5000)
	require.True(t, ok)
	require.InDelta(t, 3333.33333333, volume, 1e-9)
}

func TestSellSizing(t *testing.T) {
	// No holding, or below the minimum unit: no-op.
	_, ok := sellSizing(0, 0.10, 0.0001)
	require.False(t, ok)
	_, ok = sellSizing(0.00009, 0.10, 0.0001)
	require.False(t, ok)

	// 10% of the holding when that clears the floor.
	volume, ok := sellSizing(0.5, 0.10, 0.0001)
	require.True(t, ok)
	require.InDelta(t, 0.05, volume, 1e-9)

	// Floored at the minimum unit.
	volume, ok = sellSizing(0.0005, 0.10, 0.0001)
	require.True(t, ok)
	require.InDelta(t, 0.0001, volume, 1e-9)

	// Never more than the holding.
	volume, ok = sellSizing(0.0001, 0.10, 0.0001)
	require.True(t, ok)
	require.InDelta(t, 0.0001, volume, 1e-9)
}

func TestTruncate8(t *testing.T) {
	require.InDelta(t, 0.12345678, truncate8(0.123456789), 1e-12)
	require.InDelta(t, 5000.0, truncate8(5000), 1e-12)
}
