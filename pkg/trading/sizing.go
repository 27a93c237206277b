package trading

import "math"

// truncate8 truncates (never rounds) to 8 decimal places, matching the
// exchange's volume precision.
func truncate8(v float64) float64 {
	return math.Trunc(v*1e8) / 1e8
}

// buySizing converts a bid-account balance into an order volume. The
// order notional is a fraction of the balance, raised to the side's
// minimum total when the fraction alone would be rejected. When even the
// raised size exceeds the balance the decision is a no-op, not an error.
func buySizing(available, price, fraction, minTotal float64) (volume float64, ok bool) {
	orderSize := truncate8(available * fraction)
	if orderSize < minTotal {
		orderSize = minTotal
	}
	if available < orderSize {
		return 0, false
	}
	return truncate8(orderSize / price), true
}

// sellSizing converts a holding into a sell volume: the same fraction,
// floored at the minimum tradeable unit and capped at the total holding.
// A holding below the minimum unit is a no-op.
func sellSizing(holding, fraction, minVolume float64) (volume float64, ok bool) {
	if holding <= 0 || holding < minVolume {
		return 0, false
	}
	volume = truncate8(holding * fraction)
	if volume < minVolume {
		volume = minVolume
	}
	if volume > holding {
		volume = holding
	}
	return volume, true
}
