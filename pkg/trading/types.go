package trading

import (
	"context"
	"time"

	"coinpilot/pkg/exchange/bithumb"
	"coinpilot/pkg/indicators"
)

// Gateway is the authenticated exchange surface the pipeline depends on.
// *bithumb.Client satisfies it.
type Gateway interface {
	GetCandles(ctx context.Context, market string, count int) ([]bithumb.Candle, error)
	GetOrderChance(ctx context.Context, market string) (*bithumb.OrderChance, error)
	PlaceOrder(ctx context.Context, req bithumb.OrderRequest) (*bithumb.Order, error)
	ListOrders(ctx context.Context, market, state string, page, limit int) ([]bithumb.Order, error)
	CancelOrder(ctx context.Context, uuid string) (*bithumb.Order, error)
}

// OrderRecord is the persisted representation of a submitted order. The
// exchange stays the source of truth for lifecycle state; the local row
// is refreshed by reconciliation, never authoritative.
type OrderRecord struct {
	UUID            string
	Market          string
	Side            string
	OrdType         string
	Price           float64
	Volume          float64
	RemainingVolume float64
	ReservedFee     float64
	RemainingFee    float64
	PaidFee         float64
	Locked          float64
	ExecutedVolume  float64
	TradesCount     int
	State           string
	CreatedAt       time.Time
}

// SignalRecord is the per-decision audit row. Created once per
// non-neutral signal; the order uuid is linked exactly once, and a
// signal that never produced an order keeps it empty with a failure
// reason instead.
type SignalRecord struct {
	ID            int64
	Market        string
	Price         float64
	RSI           *float64
	SignalType    int
	OrderExecuted bool
	OrderUUID     *string
	FailureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderStore persists order records. Upsert is keyed by order uuid so
// concurrent invocations cannot race on the same row.
type OrderStore interface {
	Upsert(ctx context.Context, rec *OrderRecord) error
	RecentByMarket(ctx context.Context, market string, limit int) ([]OrderRecord, error)
}

// SignalStore persists the decision audit trail.
type SignalStore interface {
	Insert(ctx context.Context, rec *SignalRecord) (int64, error)
	FindByOrderUUID(ctx context.Context, uuid string) (*SignalRecord, error)
	LatestByMarket(ctx context.Context, market string) (*SignalRecord, error)
	SetOrderUUID(ctx context.Context, id int64, uuid string) error
	MarkExecuted(ctx context.Context, id int64) error
	SetFailure(ctx context.Context, id int64, reason string) error
}

// Result is the structured outcome of one pipeline invocation.
type Result struct {
	Prices          []float64
	MACD            []float64
	RSI             []float64
	BollingerUpper  []float64
	BollingerMiddle []float64
	BollingerLower  []float64
	Signals         []indicators.Signal
	OrderExecuted   bool
	OrderStatus     string
}

func newOrderRecord(order *bithumb.Order, now time.Time) *OrderRecord {
	return &OrderRecord{
		UUID:            order.UUID,
		Market:          order.Market,
		Side:            order.Side,
		OrdType:         order.OrdType,
		Price:           order.Price.Float64(),
		Volume:          order.Volume.Float64(),
		RemainingVolume: order.RemainingVolume.Float64(),
		ReservedFee:     order.ReservedFee.Float64(),
		RemainingFee:    order.RemainingFee.Float64(),
		PaidFee:         order.PaidFee.Float64(),
		Locked:          order.Locked.Float64(),
		ExecutedVolume:  order.ExecutedVolume.Float64(),
		TradesCount:     order.TradesCount,
		State:           order.State,
		CreatedAt:       now,
	}
}
