package trading

import (
	"context"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"coinpilot/pkg/exchange/bithumb"
)

// DryRunGateway wraps a Gateway so reads pass through while writes are
// simulated. Candles, balances and open orders come from the real
// exchange; order placement and cancellation never leave the process.
type DryRunGateway struct {
	Gateway
}

var _ Gateway = (*DryRunGateway)(nil)

func NewDryRunGateway(g Gateway) *DryRunGateway {
	return &DryRunGateway{Gateway: g}
}

// PlaceOrder fabricates an accepted order instead of submitting one.
func (g *DryRunGateway) PlaceOrder(ctx context.Context, req bithumb.OrderRequest) (*bithumb.Order, error) {
	id := "dryrun-" + uuid.NewString()
	logx.WithContext(ctx).Infof("dry run: would place %s %s %.8f @ %.2f (uuid %s)",
		req.Market, req.Side, req.Volume, req.Price, id)
	return &bithumb.Order{
		UUID:            id,
		Side:            req.Side,
		OrdType:         req.OrdType,
		Price:           bithumb.Number(req.Price),
		State:           bithumb.StateWait,
		Market:          req.Market,
		Volume:          bithumb.Number(req.Volume),
		RemainingVolume: bithumb.Number(req.Volume),
	}, nil
}

// CancelOrder reports success without touching the exchange.
func (g *DryRunGateway) CancelOrder(ctx context.Context, id string) (*bithumb.Order, error) {
	logx.WithContext(ctx).Infof("dry run: would cancel order %s", id)
	return &bithumb.Order{UUID: id, State: "cancel"}, nil
}
