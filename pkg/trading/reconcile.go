package trading

import (
	"context"
	"fmt"
	"math"

	"github.com/zeromicro/go-zero/core/logx"

	"coinpilot/pkg/exchange/bithumb"
)

const reconcilePageLimit = 10

// cancelStaleOrders cancels "wait" orders whose linked signal record is
// older than the staleness budget. Orders with no linked record cannot
// be attributed and are left untouched. Each order is handled
// independently; one failure never blocks the rest.
func (s *Service) cancelStaleOrders(ctx context.Context, market string) string {
	logger := logx.WithContext(ctx)

	waiting, err := s.gateway.ListOrders(ctx, market, bithumb.StateWait, 1, reconcilePageLimit)
	if err != nil {
		logger.Errorf("list waiting orders: %v", err)
		return ""
	}

	status := ""
	for _, order := range waiting {
		rec, err := s.signals.FindByOrderUUID(ctx, order.UUID)
		if err != nil {
			logger.Errorf("look up signal for order %s: %v", order.UUID, err)
			continue
		}
		if rec == nil {
			continue
		}
		age := s.now().Sub(rec.CreatedAt)
		if age < s.cfg.StaleAfter {
			continue
		}

		logger.Infof("canceling unfilled order after %s: uuid %s, created %s",
			s.cfg.StaleAfter, order.UUID, rec.CreatedAt)
		if _, err := s.gateway.CancelOrder(ctx, order.UUID); err != nil {
			logger.Errorf("cancel order %s: %v", order.UUID, err)
			continue
		}
		reason := fmt.Sprintf("order canceled after %s timeout", s.cfg.StaleAfter)
		if err := s.signals.SetFailure(ctx, rec.ID, reason); err != nil {
			logger.Errorf("record cancellation on signal %d: %v", rec.ID, err)
		}
		status = fmt.Sprintf("canceled unfilled order %s after %s", order.UUID, s.cfg.StaleAfter)
	}
	return status
}

// monitorExits scans filled buy orders and triggers a sell when the
// price has moved past the exit band in either direction while a
// holding remains. This is a risk override: it fires regardless of the
// current strategy signal.
func (s *Service) monitorExits(ctx context.Context, market string, currentPrice float64, chance *bithumb.OrderChance) (string, bool) {
	logger := logx.WithContext(ctx)

	done, err := s.gateway.ListOrders(ctx, market, bithumb.StateDone, 1, reconcilePageLimit)
	if err != nil {
		logger.Errorf("list done orders: %v", err)
		return "", false
	}

	status := ""
	exited := false
	for _, order := range done {
		if order.Side != bithumb.SideBid || order.State != bithumb.StateDone {
			continue
		}
		fillPrice := order.Price.Float64()
		if fillPrice <= 0 {
			continue
		}
		priceChange := (currentPrice - fillPrice) / fillPrice
		if math.Abs(priceChange) < s.cfg.ExitThreshold {
			continue
		}
		if chance.AskAccount.Balance.Float64() <= 0 {
			continue
		}

		logger.Infof("exit condition on order %s: fill %.2f, current %.2f, change %.2f%%",
			order.UUID, fillPrice, currentPrice, priceChange*100)

		// Every qualifying fill gets its own exit sell. executeSell
		// re-fetches the balance; the snapshot passed in is only good
		// for the positive-holding gate.
		if _, submitted, err := s.executeSell(ctx, market, currentPrice); err != nil {
			logger.Errorf("exit sell for order %s: %v", order.UUID, err)
		} else if submitted {
			status = fmt.Sprintf("take profit/stop loss executed, price change %.2f%%", priceChange*100)
			exited = true
		}
	}
	return status, exited
}
