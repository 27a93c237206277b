package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"coinpilot/pkg/trading"
)

var _ trading.SignalStore = (SignalHistoryModel)(nil)

// SignalHistory mirrors one row of public.signal_history, the
// per-decision audit trail.
type SignalHistory struct {
	Id            int64
	Market        string
	Price         float64
	Rsi           sql.NullFloat64
	SignalType    int64
	OrderExecuted bool
	OrderUuid     sql.NullString
	FailureReason sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type (
	// SignalHistoryModel is an interface to be customized, add more methods
	// here, and implement the added methods in customSignalHistoryModel.
	SignalHistoryModel interface {
		Insert(ctx context.Context, rec *trading.SignalRecord) (int64, error)
		FindByOrderUUID(ctx context.Context, uuid string) (*trading.SignalRecord, error)
		LatestByMarket(ctx context.Context, market string) (*trading.SignalRecord, error)
		SetOrderUUID(ctx context.Context, id int64, uuid string) error
		MarkExecuted(ctx context.Context, id int64) error
		SetFailure(ctx context.Context, id int64, reason string) error
	}

	customSignalHistoryModel struct {
		conn sqlx.SqlConn
	}
)

// NewSignalHistoryModel returns a model for the database table.
func NewSignalHistoryModel(conn sqlx.SqlConn) SignalHistoryModel {
	return &customSignalHistoryModel{conn: conn}
}

const signalHistoryColumns = `
    id,
    market,
    price,
    rsi,
    signal_type,
    order_executed,
    order_uuid,
    failure_reason,
    created_at,
    updated_at`

// Insert persists a new decision row and returns its id.
func (m *customSignalHistoryModel) Insert(ctx context.Context, rec *trading.SignalRecord) (int64, error) {
	const query = `
INSERT INTO public.signal_history (
    market, price, rsi, signal_type, order_executed, created_at, updated_at
) VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
RETURNING id`

	var rsi sql.NullFloat64
	if rec.RSI != nil {
		rsi = sql.NullFloat64{Float64: *rec.RSI, Valid: true}
	}

	var id int64
	if err := m.conn.QueryRowCtx(ctx, &id, query, rec.Market, rec.Price, rsi, rec.SignalType); err != nil {
		return 0, fmt.Errorf("signal_history.Insert query: %w", err)
	}
	return id, nil
}

// FindByOrderUUID returns the decision row linked to an order, or nil
// when the order was never attributed to one.
func (m *customSignalHistoryModel) FindByOrderUUID(ctx context.Context, uuid string) (*trading.SignalRecord, error) {
	query := `
SELECT` + signalHistoryColumns + `
FROM public.signal_history
WHERE order_uuid = $1
ORDER BY id DESC
LIMIT 1`

	var row SignalHistory
	switch err := m.conn.QueryRowCtx(ctx, &row, query, uuid); err {
	case nil:
		rec := buildSignalRecord(&row)
		return &rec, nil
	case sqlx.ErrNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("signal_history.FindByOrderUUID query: %w", err)
	}
}

// LatestByMarket returns the most recent decision row for the market,
// or nil when there is none.
func (m *customSignalHistoryModel) LatestByMarket(ctx context.Context, market string) (*trading.SignalRecord, error) {
	query := `
SELECT` + signalHistoryColumns + `
FROM public.signal_history
WHERE market = $1
ORDER BY id DESC
LIMIT 1`

	var row SignalHistory
	switch err := m.conn.QueryRowCtx(ctx, &row, query, market); err {
	case nil:
		rec := buildSignalRecord(&row)
		return &rec, nil
	case sqlx.ErrNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("signal_history.LatestByMarket query: %w", err)
	}
}

// SetOrderUUID links the submitted order to its decision row. The link
// is written once and never overwritten.
func (m *customSignalHistoryModel) SetOrderUUID(ctx context.Context, id int64, uuid string) error {
	const query = `
UPDATE public.signal_history
SET order_uuid = $2, updated_at = NOW()
WHERE id = $1 AND order_uuid IS NULL`

	if _, err := m.conn.ExecCtx(ctx, query, id, uuid); err != nil {
		return fmt.Errorf("signal_history.SetOrderUUID exec: %w", err)
	}
	return nil
}

// MarkExecuted flips the executed flag on a decision row.
func (m *customSignalHistoryModel) MarkExecuted(ctx context.Context, id int64) error {
	const query = `
UPDATE public.signal_history
SET order_executed = TRUE, updated_at = NOW()
WHERE id = $1`

	if _, err := m.conn.ExecCtx(ctx, query, id); err != nil {
		return fmt.Errorf("signal_history.MarkExecuted exec: %w", err)
	}
	return nil
}

// SetFailure records why a decision produced no filled order.
func (m *customSignalHistoryModel) SetFailure(ctx context.Context, id int64, reason string) error {
	const query = `
UPDATE public.signal_history
SET failure_reason = $2, updated_at = NOW()
WHERE id = $1`

	if _, err := m.conn.ExecCtx(ctx, query, id, reason); err != nil {
		return fmt.Errorf("signal_history.SetFailure exec: %w", err)
	}
	return nil
}

func buildSignalRecord(row *SignalHistory) trading.SignalRecord {
	rec := trading.SignalRecord{
		ID:            row.Id,
		Market:        row.Market,
		Price:         row.Price,
		SignalType:    int(row.SignalType),
		OrderExecuted: row.OrderExecuted,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Rsi.Valid {
		value := row.Rsi.Float64
		rec.RSI = &value
	}
	if row.OrderUuid.Valid {
		value := row.OrderUuid.String
		rec.OrderUUID = &value
	}
	if row.FailureReason.Valid {
		value := row.FailureReason.String
		rec.FailureReason = &value
	}
	return rec
}
