package trading

import (
	"context"
	"fmt"
	"sync"

	"coinpilot/pkg/exchange/bithumb"
)

// fakeGateway scripts exchange responses and records submissions.
type fakeGateway struct {
	mu sync.Mutex

	candles     []bithumb.Candle
	candlesErr  error
	chance      *bithumb.OrderChance
	chanceErr   error
	waitOrders  []bithumb.Order
	doneOrders  []bithumb.Order
	listErr     error
	placeErr    error
	placedState string

	placed   []bithumb.OrderRequest
	canceled []string

	chanceCalls int
	orderSeq    int
}

func (g *fakeGateway) GetCandles(ctx context.Context, market string, count int) ([]bithumb.Candle, error) {
	if g.candlesErr != nil {
		return nil, g.candlesErr
	}
	return g.candles, nil
}

func (g *fakeGateway) GetOrderChance(ctx context.Context, market string) (*bithumb.OrderChance, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chanceCalls++
	if g.chanceErr != nil {
		return nil, g.chanceErr
	}
	snapshot := *g.chance
	return &snapshot, nil
}

func (g *fakeGateway) PlaceOrder(ctx context.Context, req bithumb.OrderRequest) (*bithumb.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.placeErr != nil {
		return nil, g.placeErr
	}
	g.placed = append(g.placed, req)
	g.orderSeq++
	state := g.placedState
	if state == "" {
		state = bithumb.StateWait
	}
	return &bithumb.Order{
		UUID:            fmt.Sprintf("order-%d", g.orderSeq),
		Side:            req.Side,
		OrdType:         req.OrdType,
		Price:           bithumb.Number(req.Price),
		State:           state,
		Market:          req.Market,
		Volume:          bithumb.Number(req.Volume),
		RemainingVolume: bithumb.Number(req.Volume),
	}, nil
}

func (g *fakeGateway) ListOrders(ctx context.Context, market, state string, page, limit int) ([]bithumb.Order, error) {
	if g.listErr != nil {
		return nil, g.listErr
	}
	if state == bithumb.StateWait {
		return g.waitOrders, nil
	}
	return g.doneOrders, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, uuid string) (*bithumb.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, uuid)
	return &bithumb.Order{UUID: uuid, State: "cancel"}, nil
}

// fakeSignalStore keeps signal records in memory.
type fakeSignalStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*SignalRecord
}

func newFakeSignalStore() *fakeSignalStore {
	return &fakeSignalStore{records: map[int64]*SignalRecord{}}
}

func (s *fakeSignalStore) Insert(ctx context.Context, rec *SignalRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	clone := *rec
	clone.ID = s.nextID
	s.records[clone.ID] = &clone
	return clone.ID, nil
}

func (s *fakeSignalStore) FindByOrderUUID(ctx context.Context, uuid string) (*SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.OrderUUID != nil && *rec.OrderUUID == uuid {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeSignalStore) LatestByMarket(ctx context.Context, market string) (*SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *SignalRecord
	for _, rec := range s.records {
		if rec.Market != market {
			continue
		}
		if latest == nil || rec.ID > latest.ID {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	clone := *latest
	return &clone, nil
}

func (s *fakeSignalStore) SetOrderUUID(ctx context.Context, id int64, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("signal %d not found", id)
	}
	rec.OrderUUID = &uuid
	return nil
}

func (s *fakeSignalStore) MarkExecuted(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("signal %d not found", id)
	}
	rec.OrderExecuted = true
	return nil
}

func (s *fakeSignalStore) SetFailure(ctx context.Context, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("signal %d not found", id)
	}
	rec.FailureReason = &reason
	return nil
}

func (s *fakeSignalStore) byID(id int64) *SignalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

// fakeOrderStore keeps order records in memory, upsert keyed by uuid.
type fakeOrderStore struct {
	mu      sync.Mutex
	records map[string]*OrderRecord
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{records: map[string]*OrderRecord{}}
}

func (s *fakeOrderStore) Upsert(ctx context.Context, rec *OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	s.records[rec.UUID] = &clone
	return nil
}

func (s *fakeOrderStore) RecentByMarket(ctx context.Context, market string, limit int) ([]OrderRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OrderRecord
	for _, rec := range s.records {
		if rec.Market == market {
			out = append(out, *rec)
		}
	}
	return out, nil
}
