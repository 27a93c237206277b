package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"coinpilot/pkg/indicators"
)

// Feeder yields sequential closing prices for a market.
type Feeder interface {
	Next(ctx context.Context) (float64, bool, error)
}

// Strategy maps the price history so far into a signal for the latest bar.
type Strategy interface {
	Decide(ctx context.Context, prices []float64) (indicators.Signal, error)
}

// Engine replays a price series through a Strategy and a simulated spot
// portfolio. Sizing follows the live policy: a fixed fraction of the
// available balance, raised to the exchange minimum, skipped when the
// balance cannot cover it.
type Engine struct {
	Feeder   Feeder
	Strategy Strategy

	// Optional simulation parameters
	InitialCash    float64 // quote currency, defaults to 1000000 if zero
	SizingFraction float64 // defaults to 0.10
	MinOrderTotal  float64 // defaults to 5000
	MinVolume      float64 // defaults to 0.0001
	FeeBps         float64 // per-trade fee in basis points (e.g., 2.5 for 0.025%)
	SlippageBps    float64 // execution slippage in bps applied to the close

	// Optional: write JSON report to this path
	OutputPath string
}

// Result summarizes a simulation run.
type Result struct {
	Steps       int
	OrdersSent  int
	Trades      int
	Wins        int
	WinRate     float64
	RealizedPNL float64
	UnrealPNL   float64
	TotalPNL    float64
	MaxDDPct    float64
	Sharpe      float64
	EquityCurve []float64
	Details     []TradeDetail
}

// TradeDetail records per-order execution for analysis.
type TradeDetail struct {
	Step     int     `json:"step"`
	Side     string  `json:"side"` // buy/sell
	Price    float64 `json:"price"`
	Qty      float64 `json:"qty"`
	Fee      float64 `json:"fee"`
	Realized float64 `json:"realized"` // realized PnL contributed by this order
	Holding  float64 `json:"holding"`  // base units held after this order
}

func (e *Engine) Run(ctx context.Context) (*Result, error) {
	if e.Feeder == nil || e.Strategy == nil {
		return nil, fmt.Errorf("backtest: engine not fully configured")
	}
	cash := e.InitialCash
	if cash <= 0 {
		cash = 1000000
	}
	fraction := e.SizingFraction
	if fraction <= 0 {
		fraction = 0.10
	}
	minTotal := e.MinOrderTotal
	if minTotal <= 0 {
		minTotal = 5000
	}
	minVolume := e.MinVolume
	if minVolume <= 0 {
		minVolume = 0.0001
	}

	res := &Result{}
	pf := &portfolio{cash: cash, feeBps: e.FeeBps}
	var prices []float64

	for {
		px, ok, err := e.Feeder.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Steps++
		prices = append(prices, px)

		signal, err := e.Strategy.Decide(ctx, prices)
		if err != nil {
			return nil, err
		}

		switch signal {
		case indicators.Buy:
			execPx := applySlippage(px, e.SlippageBps, true)
			total := pf.cash * fraction
			if total < minTotal {
				total = minTotal
			}
			if total > pf.cash {
				break // cannot afford the minimum: skip, not an error
			}
			qty := truncate8(total / execPx)
			if qty < minVolume {
				break
			}
			if fee, ok := pf.buy(execPx, qty); ok {
				res.OrdersSent++
				res.Details = append(res.Details, TradeDetail{
					Step: res.Steps, Side: "buy", Price: execPx, Qty: qty,
					Fee: fee, Holding: pf.holding,
				})
			}
		case indicators.Sell:
			if pf.holding < minVolume {
				break
			}
			execPx := applySlippage(px, e.SlippageBps, false)
			qty := truncate8(pf.holding * fraction)
			if qty < minVolume {
				qty = minVolume
			}
			if qty > pf.holding {
				qty = pf.holding
			}
			if realized, fee, ok := pf.sell(execPx, qty); ok {
				res.OrdersSent++
				res.Trades++
				if realized > 0 {
					res.Wins++
				}
				res.Details = append(res.Details, TradeDetail{
					Step: res.Steps, Side: "sell", Price: execPx, Qty: qty,
					Fee: fee, Realized: realized, Holding: pf.holding,
				})
			}
		}

		res.EquityCurve = append(res.EquityCurve, pf.equity(px))
	}

	res.RealizedPNL = pf.realized
	res.UnrealPNL = pf.unrealized
	res.TotalPNL = res.RealizedPNL + res.UnrealPNL
	if res.Trades > 0 {
		res.WinRate = float64(res.Wins) / float64(res.Trades)
	}
	res.MaxDDPct = maxDrawdownPct(append([]float64{cash}, res.EquityCurve...))
	res.Sharpe = sharpe(res.EquityCurve)

	if e.OutputPath != "" {
		if err := writeReport(e.OutputPath, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func applySlippage(px, bps float64, isBuy bool) float64 {
	if bps == 0 {
		return px
	}
	m := 1 + bps/10000.0
	if isBuy {
		return px * m
	}
	return px / m
}

func truncate8(v float64) float64 {
	return math.Trunc(v*1e8) / 1e8
}

func maxDrawdownPct(series []float64) float64 {
	peak := series[0]
	mdd := 0.0
	for _, v := range series {
		if v > peak {
			peak = v
		}
		dd := (peak - v) / peak
		if dd > mdd {
			mdd = dd
		}
	}
	return mdd * 100
}

func sharpe(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		rets = append(rets, equity[i]/equity[i-1]-1)
	}
	if len(rets) == 0 {
		return 0
	}
	m := 0.0
	for _, r := range rets {
		m += r
	}
	m /= float64(len(rets))
	v := 0.0
	for _, r := range rets {
		d := r - m
		v += d * d
	}
	v /= float64(len(rets))
	sd := math.Sqrt(v)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(float64(len(rets)))
}

func writeReport(path string, r *Result) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
