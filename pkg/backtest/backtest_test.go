package backtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"coinpilot/pkg/indicators"
)

// scriptedStrategy emits a fixed signal per step, Neutral past the end.
type scriptedStrategy struct {
	signals []indicators.Signal
	step    int
}

func (s *scriptedStrategy) Decide(ctx context.Context, prices []float64) (indicators.Signal, error) {
	s.step++
	if s.step-1 < len(s.signals) {
		return s.signals[s.step-1], nil
	}
	return indicators.Neutral, nil
}

func TestEngineBuyThenSell(t *testing.T) {
	prices := []float64{100, 100, 100, 110, 90, 120}
	strategy := &scriptedStrategy{signals: []indicators.Signal{
		indicators.Neutral, indicators.Buy, indicators.Neutral,
		indicators.Neutral, indicators.Neutral, indicators.Sell,
	}}
	engine := &Engine{
		Feeder:      NewSliceFeeder(prices),
		Strategy:    strategy,
		InitialCash: 1000000,
	}

	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, res.Steps)
	require.Equal(t, 2, res.OrdersSent)
	require.Len(t, res.EquityCurve, 6)

	// Buy at 100 with 10% of 1000000: qty 1000. Sell 10% of the holding
	// at 120: realized (120-100)*100 = 2000, leaving 900 units carrying
	// (120-100)*900 unrealized.
	require.Equal(t, 1, res.Trades)
	require.Equal(t, 1, res.Wins)
	require.Equal(t, 1.0, res.WinRate)
	require.InDelta(t, 2000.0, res.RealizedPNL, 1e-6)
	require.InDelta(t, 18000.0, res.UnrealPNL, 1e-6)
	require.InDelta(t, 20000.0, res.TotalPNL, 1e-6)
	require.InDelta(t, 1020000.0, res.EquityCurve[5], 1e-6)

	// The only drawdown is the dip to 90 after the 110 peak.
	require.InDelta(t, 100*20000.0/1010000.0, res.MaxDDPct, 1e-4)

	require.Len(t, res.Details, 2)
	require.Equal(t, "buy", res.Details[0].Side)
	require.InDelta(t, 1000.0, res.Details[0].Qty, 1e-9)
	require.Equal(t, "sell", res.Details[1].Side)
	require.InDelta(t, 100.0, res.Details[1].Qty, 1e-9)
}

func TestEngineSkipsUnaffordableBuy(t *testing.T) {
	// 10% of 4000 is 400, raised to the 5000 minimum which the cash
	// cannot cover: the signal is skipped.
	engine := &Engine{
		Feeder:      NewSliceFeeder([]float64{100, 100}),
		Strategy:    &scriptedStrategy{signals: []indicators.Signal{indicators.Buy, indicators.Sell}},
		InitialCash: 4000,
	}
	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.OrdersSent)
	require.Zero(t, res.Trades)
}

func TestEngineAppliesFees(t *testing.T) {
	engine := &Engine{
		Feeder:      NewSliceFeeder([]float64{100}),
		Strategy:    &scriptedStrategy{signals: []indicators.Signal{indicators.Buy}},
		InitialCash: 1000000,
		FeeBps:      25, // 0.25%
	}
	res, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.OrdersSent)
	require.InDelta(t, 100000*0.0025, res.Details[0].Fee, 1e-6)
}

func TestEngineWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	engine := &Engine{
		Feeder:      NewSliceFeeder([]float64{100, 100}),
		Strategy:    &scriptedStrategy{},
		InitialCash: 10000,
		OutputPath:  path,
	}
	_, err := engine.Run(context.Background())
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestEngineRequiresConfiguration(t *testing.T) {
	_, err := (&Engine{}).Run(context.Background())
	require.Error(t, err)
}

func TestSignalStrategyCrashTriggersBuy(t *testing.T) {
	prices := make([]float64, 55)
	for i := range prices {
		prices[i] = 100
	}
	prices[54] = 50

	strategy := &SignalStrategy{}
	signal, err := strategy.Decide(context.Background(), prices)
	require.NoError(t, err)
	require.Equal(t, indicators.Buy, signal)

	// The confirmation variant holds back without an upward MACD cross.
	confirm := &SignalStrategy{MACDConfirm: true}
	signal, err = confirm.Decide(context.Background(), prices)
	require.NoError(t, err)
	require.Equal(t, indicators.Neutral, signal)
}

func TestSignalStrategyNeutralCases(t *testing.T) {
	strategy := &SignalStrategy{}

	// Too little history.
	signal, err := strategy.Decide(context.Background(), []float64{100, 101, 102})
	require.NoError(t, err)
	require.Equal(t, indicators.Neutral, signal)

	// Flat market: bands collapse, no position can be computed.
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}
	signal, err = strategy.Decide(context.Background(), flat)
	require.NoError(t, err)
	require.Equal(t, indicators.Neutral, signal)
}

func TestCandleFileFeederReversesToChronological(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candles.json")
	raw := `[
  {"market":"KRW-BTC","trade_price":120,"timestamp":3},
  {"market":"KRW-BTC","trade_price":110,"timestamp":2},
  {"market":"KRW-BTC","trade_price":100,"timestamp":1}
]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	feeder, err := NewCandleFileFeeder(path)
	require.NoError(t, err)

	var got []float64
	for {
		px, ok, err := feeder.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, px)
	}
	require.Equal(t, []float64{100, 110, 120}, got)
}

func TestCandleFileFeederMissingFile(t *testing.T) {
	_, err := NewCandleFileFeeder(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
