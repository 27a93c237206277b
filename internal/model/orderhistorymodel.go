package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinpilot/pkg/trading"
)

var _ trading.OrderStore = (OrderHistoryModel)(nil)

// OrderHistory mirrors one row of public.order_history. The exchange
// remains the source of truth; this table is a local journal refreshed
// by reconciliation.
type OrderHistory struct {
	Uuid            string
	Market          string
	Side            string
	OrdType         string
	Price           sql.NullFloat64
	Volume          sql.NullFloat64
	RemainingVolume sql.NullFloat64
	ReservedFee     sql.NullFloat64
	RemainingFee    sql.NullFloat64
	PaidFee         sql.NullFloat64
	Locked          sql.NullFloat64
	ExecutedVolume  sql.NullFloat64
	TradesCount     int64
	State           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type (
	// OrderHistoryModel is an interface to be customized, add more methods
	// here, and implement the added methods in customOrderHistoryModel.
	OrderHistoryModel interface {
		Upsert(ctx context.Context, rec *trading.OrderRecord) error
		RecentByMarket(ctx context.Context, market string, limit int) ([]trading.OrderRecord, error)
		FindByUUID(ctx context.Context, uuid string) (*trading.OrderRecord, error)
	}

	customOrderHistoryModel struct {
		conn sqlx.SqlConn
	}
)

// NewOrderHistoryModel returns a model for the database table.
func NewOrderHistoryModel(conn sqlx.SqlConn) OrderHistoryModel {
	return &customOrderHistoryModel{conn: conn}
}

const orderHistoryColumns = `
    uuid,
    market,
    side,
    ord_type,
    price,
    volume,
    remaining_volume,
    reserved_fee,
    remaining_fee,
    paid_fee,
    locked,
    executed_volume,
    trades_count,
    state,
    created_at,
    updated_at`

// Upsert inserts or refreshes one order row keyed by uuid. Two
// invocations racing on the same order converge on the later state.
func (m *customOrderHistoryModel) Upsert(ctx context.Context, rec *trading.OrderRecord) error {
	const query = `
INSERT INTO public.order_history (
    uuid, market, side, ord_type, price, volume, remaining_volume,
    reserved_fee, remaining_fee, paid_fee, locked, executed_volume,
    trades_count, state, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
ON CONFLICT (uuid) DO UPDATE SET
    price = EXCLUDED.price,
    volume = EXCLUDED.volume,
    remaining_volume = EXCLUDED.remaining_volume,
    reserved_fee = EXCLUDED.reserved_fee,
    remaining_fee = EXCLUDED.remaining_fee,
    paid_fee = EXCLUDED.paid_fee,
    locked = EXCLUDED.locked,
    executed_volume = EXCLUDED.executed_volume,
    trades_count = EXCLUDED.trades_count,
    state = EXCLUDED.state,
    updated_at = NOW()`

	_, err := m.conn.ExecCtx(ctx, query,
		rec.UUID, rec.Market, rec.Side, rec.OrdType, rec.Price, rec.Volume,
		rec.RemainingVolume, rec.ReservedFee, rec.RemainingFee, rec.PaidFee,
		rec.Locked, rec.ExecutedVolume, rec.TradesCount, rec.State, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("order_history.Upsert exec: %w", err)
	}
	return nil
}

// RecentByMarket returns orders for the market ordered by creation time
// descending. Limit defaults to 50 when non-positive.
func (m *customOrderHistoryModel) RecentByMarket(ctx context.Context, market string, limit int) ([]trading.OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
SELECT` + orderHistoryColumns + `
FROM public.order_history
WHERE market = $1
ORDER BY created_at DESC
LIMIT $2`

	var rows []OrderHistory
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, market, limit); err != nil {
		return nil, fmt.Errorf("order_history.RecentByMarket query: %w", err)
	}

	result := make([]trading.OrderRecord, 0, len(rows))
	for i := range rows {
		result = append(result, buildOrderRecord(&rows[i]))
	}
	return result, nil
}

// FindByUUID returns one order row, or nil when the uuid is unknown.
func (m *customOrderHistoryModel) FindByUUID(ctx context.Context, uuid string) (*trading.OrderRecord, error) {
	query := `
SELECT` + orderHistoryColumns + `
FROM public.order_history
WHERE uuid = $1
LIMIT 1`

	var row OrderHistory
	switch err := m.conn.QueryRowCtx(ctx, &row, query, uuid); err {
	case nil:
		rec := buildOrderRecord(&row)
		return &rec, nil
	case sqlx.ErrNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("order_history.FindByUUID query: %w", err)
	}
}

func buildOrderRecord(row *OrderHistory) trading.OrderRecord {
	return trading.OrderRecord{
		UUID:            row.Uuid,
		Market:          row.Market,
		Side:            row.Side,
		OrdType:         row.OrdType,
		Price:           row.Price.Float64,
		Volume:          row.Volume.Float64,
		RemainingVolume: row.RemainingVolume.Float64,
		ReservedFee:     row.ReservedFee.Float64,
		RemainingFee:    row.RemainingFee.Float64,
		PaidFee:         row.PaidFee.Float64,
		Locked:          row.Locked.Float64,
		ExecutedVolume:  row.ExecutedVolume.Float64,
		TradesCount:     int(row.TradesCount),
		State:           row.State,
		CreatedAt:       row.CreatedAt,
	}
}
