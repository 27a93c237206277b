package trading

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"coinpilot/pkg/exchange/bithumb"
)

func linkSignal(t *testing.T, signals *fakeSignalStore, market, uuid string, createdAt time.Time) int64 {
	t.Helper()
	id, err := signals.Insert(context.Background(), &SignalRecord{
		Market:    market,
		Price:     50000,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	require.NoError(t, signals.SetOrderUUID(context.Background(), id, uuid))
	return id
}

func TestCancelStaleOrdersBoundary(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gateway := &fakeGateway{
		waitOrders: []bithumb.Order{
			{UUID: "fresh", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateWait},
			{UUID: "stale", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateWait},
		},
	}
	svc, signals, _ := newTestService(t, gateway)
	svc.now = func() time.Time { return base }

	// 2m59s is inside the budget, 3m00s exactly is not.
	freshID := linkSignal(t, signals, "KRW-BTC", "fresh", base.Add(-2*time.Minute-59*time.Second))
	staleID := linkSignal(t, signals, "KRW-BTC", "stale", base.Add(-3*time.Minute))

	status := svc.cancelStaleOrders(context.Background(), "KRW-BTC")
	require.Contains(t, status, "stale")
	require.Equal(t, []string{"stale"}, gateway.canceled)

	require.Nil(t, signals.byID(freshID).FailureReason)
	staleRec := signals.byID(staleID)
	require.NotNil(t, staleRec.FailureReason)
	require.Equal(t, "order canceled after 3m0s timeout", *staleRec.FailureReason)
}

func TestCancelStaleOrdersIgnoresUnlinked(t *testing.T) {
	gateway := &fakeGateway{
		waitOrders: []bithumb.Order{
			{UUID: "unknown", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateWait},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	status := svc.cancelStaleOrders(context.Background(), "KRW-BTC")
	require.Empty(t, status)
	require.Empty(t, gateway.canceled)
}

func TestMonitorExitsSellsPastThreshold(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(0, 0.5),
		doneOrders: []bithumb.Order{
			{UUID: "filled", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, orders := newTestService(t, gateway)

	// +5% exactly clears the band.
	status, executed := svc.monitorExits(context.Background(), "KRW-BTC", 105, gateway.chance)
	require.True(t, executed)
	require.Contains(t, status, "take profit/stop loss")

	require.Len(t, gateway.placed, 1)
	placed := gateway.placed[0]
	require.Equal(t, bithumb.SideAsk, placed.Side)
	require.InDelta(t, 105.0, placed.Price, 1e-9)
	require.InDelta(t, 0.05, placed.Volume, 1e-9) // 10% of the 0.5 holding

	stored, err := orders.RecentByMarket(context.Background(), "KRW-BTC", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestMonitorExitsSellsForEveryQualifyingFill(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(0, 0.5),
		doneOrders: []bithumb.Order{
			{UUID: "fill-1", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
			{UUID: "fill-2", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	// Both fills sit 10% below the current price; each one gets its own
	// exit sell rather than the first stopping the scan.
	status, executed := svc.monitorExits(context.Background(), "KRW-BTC", 110, gateway.chance)
	require.True(t, executed)
	require.Contains(t, status, "take profit/stop loss")

	require.Len(t, gateway.placed, 2)
	for _, placed := range gateway.placed {
		require.Equal(t, bithumb.SideAsk, placed.Side)
		require.InDelta(t, 110.0, placed.Price, 1e-9)
		require.InDelta(t, 0.05, placed.Volume, 1e-9)
	}
}

func TestMonitorExitsSellsOnDrawdown(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(0, 0.5),
		doneOrders: []bithumb.Order{
			{UUID: "filled", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	// -6% triggers the stop-loss side of the band.
	_, executed := svc.monitorExits(context.Background(), "KRW-BTC", 94, gateway.chance)
	require.True(t, executed)
	require.Len(t, gateway.placed, 1)
	require.Equal(t, bithumb.SideAsk, gateway.placed[0].Side)
}

func TestMonitorExitsBelowThresholdIsNoOp(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(0, 0.5),
		doneOrders: []bithumb.Order{
			{UUID: "filled", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	_, executed := svc.monitorExits(context.Background(), "KRW-BTC", 104.9, gateway.chance)
	require.False(t, executed)
	require.Empty(t, gateway.placed)
}

func TestMonitorExitsSkipsWithoutHolding(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(100000, 0),
		doneOrders: []bithumb.Order{
			{UUID: "filled", Market: "KRW-BTC", Side: bithumb.SideBid, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	_, executed := svc.monitorExits(context.Background(), "KRW-BTC", 110, gateway.chance)
	require.False(t, executed)
	require.Empty(t, gateway.placed)
	// Nothing to sell, so no fresh snapshot is fetched either.
	require.Equal(t, 0, gateway.chanceCalls)
}

func TestMonitorExitsIgnoresAskFills(t *testing.T) {
	gateway := &fakeGateway{
		chance: chanceWith(0, 0.5),
		doneOrders: []bithumb.Order{
			{UUID: "sold", Market: "KRW-BTC", Side: bithumb.SideAsk, State: bithumb.StateDone, Price: bithumb.Number(100)},
		},
	}
	svc, _, _ := newTestService(t, gateway)

	_, executed := svc.monitorExits(context.Background(), "KRW-BTC", 110, gateway.chance)
	require.False(t, executed)
	require.Empty(t, gateway.placed)
}
