package indicators

import "math"

// EMA produces the exponential moving average for the supplied prices.
// The first value is seeded with the simple moving average of the first
// period prices, so the output is len(prices)-period+1 long. An input
// shorter than the period yields an empty slice, which callers treat as
// "not enough data yet" rather than an error.
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}
	multiplier := 2.0 / float64(period+1)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += prices[i]
	}

	result := make([]float64, 0, len(prices)-period+1)
	result = append(result, sum/float64(period))

	for i := period; i < len(prices); i++ {
		prev := result[len(result)-1]
		result = append(result, (prices[i]-prev)*multiplier+prev)
	}
	return result
}

// MACD returns the raw MACD line (fast EMA minus slow EMA) and its
// signal-smoothed line. Both are empty when prices is shorter than the
// slow period.
func MACD(prices []float64, fast, slow, signal int) ([]float64, []float64) {
	if len(prices) < slow {
		return []float64{}, []float64{}
	}
	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	n := len(fastEMA)
	if len(slowEMA) < n {
		n = len(slowEMA)
	}
	line := make([]float64, n)
	for i := 0; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, EMA(line, signal)
}

// RSI computes the Relative Strength Index with Wilder smoothing. Needs
// at least period+1 prices; output is len(prices)-period long. The loss
// average is floored at 1e-4 so an all-gain window stays finite.
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period+1 {
		return []float64{}
	}

	gains := make([]float64, 0, len(prices)-1)
	losses := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gains = append(gains, math.Max(change, 0))
		losses = append(losses, math.Max(-change, 0))
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	result := make([]float64, 0, len(prices)-period)
	result = append(result, rsiValue(avgGain, avgLoss))

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		result = append(result, rsiValue(avgGain, avgLoss))
	}
	return result
}

func rsiValue(avgGain, avgLoss float64) float64 {
	rs := avgGain / math.Max(avgLoss, 1e-4)
	return 100 - (100 / (1 + rs))
}

// BollingerBands computes a moving average envelope: middle is the SMA
// over a sliding window, upper/lower are k population standard deviations
// away. All three are aligned to the window's last index and are
// len(prices)-period+1 long, or empty on insufficient input.
func BollingerBands(prices []float64, period int, k float64) (upper, middle, lower []float64) {
	if period <= 0 || len(prices) < period {
		return []float64{}, []float64{}, []float64{}
	}

	n := len(prices) - period + 1
	upper = make([]float64, 0, n)
	middle = make([]float64, 0, n)
	lower = make([]float64, 0, n)

	for i := period - 1; i < len(prices); i++ {
		window := prices[i-period+1 : i+1]

		sum := 0.0
		for _, p := range window {
			sum += p
		}
		mean := sum / float64(period)

		variance := 0.0
		for _, p := range window {
			variance += (p - mean) * (p - mean)
		}
		sigma := math.Sqrt(variance / float64(period))

		middle = append(middle, mean)
		upper = append(upper, mean+k*sigma)
		lower = append(lower, mean-k*sigma)
	}
	return upper, middle, lower
}
