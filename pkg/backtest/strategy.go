package backtest

import (
	"context"

	"coinpilot/pkg/indicators"
)

// Indicator parameters, matching the live pipeline.
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0

	minHistory = 35
)

// SignalStrategy applies the production indicator stack to the price
// history and signals on the latest bar.
type SignalStrategy struct {
	// MACDConfirm additionally requires an upward MACD zero-line cross
	// before a buy.
	MACDConfirm bool
}

var _ Strategy = (*SignalStrategy)(nil)

func (s *SignalStrategy) Decide(ctx context.Context, prices []float64) (indicators.Signal, error) {
	if len(prices) < minHistory {
		return indicators.Neutral, nil
	}

	rsi := indicators.RSI(prices, rsiPeriod)
	upper, _, lower := indicators.BollingerBands(prices, bollingerPeriod, bollingerStdDev)

	n := len(prices)
	for _, series := range [][]float64{rsi, upper, lower} {
		if len(series) < n {
			n = len(series)
		}
	}

	if s.MACDConfirm {
		macdLine, _ := indicators.MACD(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
		if len(macdLine) < n {
			n = len(macdLine)
		}
		if n < 2 {
			return indicators.Neutral, nil
		}
		signals := indicators.GenerateSignalsMACD(
			tail(prices, n), tail(rsi, n), tail(upper, n), tail(lower, n), tail(macdLine, n))
		return signals[len(signals)-1], nil
	}

	if n < 2 {
		return indicators.Neutral, nil
	}
	signals := indicators.GenerateSignals(tail(prices, n), tail(rsi, n), tail(upper, n), tail(lower, n))
	return signals[len(signals)-1], nil
}

func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
