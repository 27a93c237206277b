package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"coinpilot/pkg/exchange/bithumb"
)

// SliceFeeder replays a fixed chronological price series.
type SliceFeeder struct {
	prices []float64
	next   int
}

var _ Feeder = (*SliceFeeder)(nil)

func NewSliceFeeder(prices []float64) *SliceFeeder {
	return &SliceFeeder{prices: prices}
}

func (f *SliceFeeder) Next(ctx context.Context) (float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if f.next >= len(f.prices) {
		return 0, false, nil
	}
	px := f.prices[f.next]
	f.next++
	return px, true, nil
}

// NewCandleFileFeeder replays closing prices from a JSON candle dump as
// returned by the exchange (newest first).
func NewCandleFileFeeder(path string) (*SliceFeeder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("backtest: read candle file %s: %w", path, err)
	}
	var candles []bithumb.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("backtest: parse candle file %s: %w", path, err)
	}
	prices := make([]float64, 0, len(candles))
	for i := len(candles) - 1; i >= 0; i-- {
		prices = append(prices, candles[i].TradePrice)
	}
	return NewSliceFeeder(prices), nil
}
