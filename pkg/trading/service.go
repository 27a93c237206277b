package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"coinpilot/pkg/exchange/bithumb"
	"coinpilot/pkg/indicators"
)

// Indicator parameters fixed by the strategy.
const (
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	rsiPeriod        = 14
	bollingerPeriod  = 20
	bollingerStdDev  = 2.0

	// Extra candles fetched so RSI and the Bollinger window are warm by
	// the time the requested range begins.
	indicatorWarmup = 35
)

// Service runs the signal-and-execution pipeline for one market. Each
// invocation is sequential; the scheduler guarantees at most one in
// flight.
type Service struct {
	cfg     *Config
	gateway Gateway
	signals SignalStore
	orders  OrderStore
	now     func() time.Time
}

// NewService wires the pipeline's collaborators.
func NewService(cfg *Config, gateway Gateway, signals SignalStore, orders OrderStore) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gateway == nil {
		return nil, errors.New("trading: gateway is required")
	}
	if signals == nil || orders == nil {
		return nil, errors.New("trading: signal and order stores are required")
	}
	return &Service{
		cfg:     cfg,
		gateway: gateway,
		signals: signals,
		orders:  orders,
		now:     time.Now,
	}, nil
}

// AnalyzeAndTrade is the pipeline entry point: fetch candles, compute
// indicators, reconcile outstanding orders, and act on the most recent
// signal. Any error that escapes the sub-steps is logged and classified
// as a single pipeline failure for this invocation.
func (s *Service) AnalyzeAndTrade(ctx context.Context, market string, count int) (*Result, error) {
	result, err := s.analyze(ctx, market, count)
	if err != nil {
		logx.WithContext(ctx).Errorf("pipeline failed for %s: %v", market, err)
		if errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrOrderExecutionFailed) {
			return result, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPipelineFailed, err)
	}
	return result, nil
}

func (s *Service) analyze(ctx context.Context, market string, count int) (*Result, error) {
	logger := logx.WithContext(ctx)

	candles, err := s.gateway.GetCandles(ctx, market, count+indicatorWarmup)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	prices := bithumb.ClosingPrices(candles)
	if len(prices) < bollingerPeriod {
		return nil, fmt.Errorf("%w: have %d candles, need %d", ErrInsufficientData, len(prices), bollingerPeriod)
	}

	macdLine, macdSignal := indicators.MACD(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	rsi := indicators.RSI(prices, rsiPeriod)
	upper, middle, lower := indicators.BollingerBands(prices, bollingerPeriod, bollingerStdDev)

	chance, err := s.gateway.GetOrderChance(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("fetch order chance: %w", err)
	}

	// Keep only the requested trailing range for the result.
	resultSize := count
	if len(prices) < resultSize {
		resultSize = len(prices)
	}
	prices = tailFloats(prices, resultSize)
	macdLine = tailFloats(macdLine, resultSize)
	macdSignal = tailFloats(macdSignal, resultSize)
	rsi = tailFloats(rsi, resultSize)
	upper = tailFloats(upper, resultSize)
	middle = tailFloats(middle, resultSize)
	lower = tailFloats(lower, resultSize)

	signals := s.generateSignals(prices, rsi, upper, lower, macdLine)
	currentPrice := prices[len(prices)-1]

	orderExecuted := false
	orderStatus := "no signal generated"

	// Reconciliation runs before the new decision; the two passes are
	// independent and a failure in one order never blocks the others.
	if status := s.cancelStaleOrders(ctx, market); status != "" {
		orderStatus = status
	}
	if status, executed := s.monitorExits(ctx, market, currentPrice, chance); executed {
		orderExecuted = true
		orderStatus = status
	}

	var execErr error
	if latest := signals[len(signals)-1]; latest != indicators.Neutral {
		var lastRSI *float64
		if len(rsi) > 0 {
			v := rsi[len(rsi)-1]
			lastRSI = &v
		}
		logger.Infof("signal detected for %s: %s at price %.2f", market, latest, currentPrice)

		var submitted bool
		submitted, execErr = s.executeSignal(ctx, market, latest, currentPrice, lastRSI)
		switch {
		case execErr != nil:
			orderStatus = fmt.Sprintf("order execution failed: %v", execErr)
		case submitted:
			orderExecuted = true
			orderStatus = "order executed for last candle signal"
		default:
			orderStatus = "signal skipped: insufficient balance"
		}
	}

	return &Result{
		Prices:          prices,
		MACD:            macdSignal,
		RSI:             rsi,
		BollingerUpper:  upper,
		BollingerMiddle: middle,
		BollingerLower:  lower,
		Signals:         signals,
		OrderExecuted:   orderExecuted,
		OrderStatus:     orderStatus,
	}, execErr
}

func (s *Service) generateSignals(prices, rsi, upper, lower, macdLine []float64) []indicators.Signal {
	// Trim every series to a common trailing length so indices align.
	n := len(prices)
	for _, series := range [][]float64{rsi, upper, lower} {
		if len(series) < n {
			n = len(series)
		}
	}
	if s.cfg.Strategy == StrategyMACDConfirm && len(macdLine) < n {
		n = len(macdLine)
	}
	if n < 1 {
		return []indicators.Signal{indicators.Neutral}
	}

	if s.cfg.Strategy == StrategyMACDConfirm {
		return indicators.GenerateSignalsMACD(
			tailFloats(prices, n), tailFloats(rsi, n),
			tailFloats(upper, n), tailFloats(lower, n), tailFloats(macdLine, n))
	}
	return indicators.GenerateSignals(
		tailFloats(prices, n), tailFloats(rsi, n),
		tailFloats(upper, n), tailFloats(lower, n))
}

// executeSignal records the decision, then sizes and submits the order.
// The signal row is persisted before submission so a crash between the
// two leaves an auditable trail, and the failure reason lands on the row
// when the exchange rejects the order.
func (s *Service) executeSignal(ctx context.Context, market string, signal indicators.Signal, price float64, lastRSI *float64) (bool, error) {
	rec := &SignalRecord{
		Market:     market,
		Price:      price,
		RSI:        lastRSI,
		SignalType: int(signal),
	}
	id, err := s.signals.Insert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("persist signal: %w", err)
	}
	rec.ID = id

	var order *bithumb.Order
	var submitted bool
	if signal == indicators.Buy {
		order, submitted, err = s.executeBuy(ctx, market, price)
	} else {
		order, submitted, err = s.executeSell(ctx, market, price)
	}
	if err != nil {
		if ferr := s.signals.SetFailure(ctx, rec.ID, err.Error()); ferr != nil {
			logx.WithContext(ctx).Errorf("record failure reason for signal %d: %v", rec.ID, ferr)
		}
		return false, fmt.Errorf("%w: %v", ErrOrderExecutionFailed, err)
	}
	if !submitted {
		if ferr := s.signals.SetFailure(ctx, rec.ID, "insufficient balance"); ferr != nil {
			logx.WithContext(ctx).Errorf("record no-op reason for signal %d: %v", rec.ID, ferr)
		}
		return false, nil
	}

	// Link the order exactly once, then flip the executed flag.
	if err := s.signals.SetOrderUUID(ctx, rec.ID, order.UUID); err != nil {
		return true, fmt.Errorf("link order %s to signal %d: %w", order.UUID, rec.ID, err)
	}
	if err := s.signals.MarkExecuted(ctx, rec.ID); err != nil {
		return true, fmt.Errorf("mark signal %d executed: %w", rec.ID, err)
	}
	return true, nil
}

// executeBuy sizes a bid from a fresh balance snapshot and submits it.
// Balances change with every fill, so the snapshot is never shared
// between two sizing decisions.
func (s *Service) executeBuy(ctx context.Context, market string, price float64) (*bithumb.Order, bool, error) {
	chance, err := s.gateway.GetOrderChance(ctx, market)
	if err != nil {
		return nil, false, fmt.Errorf("fetch order chance: %w", err)
	}

	available := chance.BidAccount.Balance.Float64()
	minTotal := chance.Market.Bid.MinTotal.Float64()
	if minTotal <= 0 {
		minTotal = s.cfg.MinOrderTotal
	}

	volume, ok := buySizing(available, price, s.cfg.SizingFraction, minTotal)
	if !ok {
		logx.WithContext(ctx).Infof("insufficient %s balance for buy: available %.2f, required %.2f",
			chance.BidAccount.Currency, available, minTotal)
		return nil, false, nil
	}
	order, err := s.submitOrder(ctx, bithumb.OrderRequest{
		Market:  market,
		Side:    bithumb.SideBid,
		Volume:  volume,
		Price:   price,
		OrdType: bithumb.OrdTypeLimit,
	})
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// executeSell sizes an ask from the holding side of a fresh snapshot.
func (s *Service) executeSell(ctx context.Context, market string, price float64) (*bithumb.Order, bool, error) {
	chance, err := s.gateway.GetOrderChance(ctx, market)
	if err != nil {
		return nil, false, fmt.Errorf("fetch order chance: %w", err)
	}

	holding := chance.AskAccount.Balance.Float64()
	volume, ok := sellSizing(holding, s.cfg.SizingFraction, s.cfg.MinVolume)
	if !ok {
		logx.WithContext(ctx).Infof("insufficient %s holding for sell: %.8f",
			chance.AskAccount.Currency, holding)
		return nil, false, nil
	}
	order, err := s.submitOrder(ctx, bithumb.OrderRequest{
		Market:  market,
		Side:    bithumb.SideAsk,
		Volume:  volume,
		Price:   price,
		OrdType: bithumb.OrdTypeLimit,
	})
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// submitOrder validates, submits and persists one order.
func (s *Service) submitOrder(ctx context.Context, req bithumb.OrderRequest) (*bithumb.Order, error) {
	if err := validateOrder(req); err != nil {
		return nil, err
	}
	order, err := s.gateway.PlaceOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Upsert(ctx, newOrderRecord(order, s.now())); err != nil {
		// The exchange accepted the order; reconciliation will repair the
		// local row on the next run.
		logx.WithContext(ctx).Errorf("persist order %s: %v", order.UUID, err)
	}
	logx.WithContext(ctx).Infof("order submitted: %s %s %.8f @ %.2f (uuid %s)",
		req.Market, req.Side, req.Volume, req.Price, order.UUID)
	return order, nil
}

func tailFloats(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
