package indicators

// Signal is a discrete per-candle trading decision.
type Signal int

const (
	Sell    Signal = -1
	Neutral Signal = 0
	Buy     Signal = 1
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// GenerateSignals maps prices, RSI and Bollinger band positions to a
// signal per index. All four slices must be index-aligned by the caller
// (trimmed to a common trailing length). The first index never signals;
// the output is always the same length as prices.
//
// A candle signals BUY when RSI is at or below 30 and the price sits in
// the bottom 30% of the band, SELL when RSI is at or above 70 and the
// price sits in the top 30%.
func GenerateSignals(prices, rsi, upper, lower []float64) []Signal {
	if len(prices) == 0 {
		return []Signal{}
	}
	signals := make([]Signal, 1, len(prices))
	signals[0] = Neutral

	for i := 1; i < len(prices); i++ {
		signal := Neutral
		if i < len(rsi) && i < len(upper) && i < len(lower) {
			position := pricePosition(prices[i], upper[i], lower[i])
			switch {
			case rsi[i] <= 30 && position < 0.3:
				signal = Buy
			case rsi[i] >= 70 && position > 0.7:
				signal = Sell
			}
		}
		signals = append(signals, signal)
	}
	return signals
}

// GenerateSignalsMACD is the MACD-confirmation strategy variant: on top
// of the RSI/Bollinger conditions, a buy requires the MACD line crossing
// up through zero between the previous and current index, and a sell the
// opposite crossing. The macd slice must be aligned like the others.
func GenerateSignalsMACD(prices, rsi, upper, lower, macd []float64) []Signal {
	if len(prices) == 0 {
		return []Signal{}
	}
	signals := make([]Signal, 1, len(prices))
	signals[0] = Neutral

	for i := 1; i < len(prices); i++ {
		signal := Neutral
		if i < len(rsi) && i < len(upper) && i < len(lower) && i < len(macd) {
			position := pricePosition(prices[i], upper[i], lower[i])
			switch {
			case rsi[i] <= 30 && position < 0.3 && macd[i-1] < 0 && macd[i] > 0:
				signal = Buy
			case rsi[i] >= 70 && position > 0.7 && macd[i-1] > 0 && macd[i] < 0:
				signal = Sell
			}
		}
		signals = append(signals, signal)
	}
	return signals
}

// pricePosition locates price inside the band: 0 at the lower band, 1 at
// the upper.
func pricePosition(price, upper, lower float64) float64 {
	return (price - lower) / (upper - lower)
}
