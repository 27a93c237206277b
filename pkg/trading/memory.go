package trading

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemorySignalStore is an in-memory SignalStore for runs without a
// database. Records do not survive a restart, so stale-order
// cancellation loses attribution across restarts; the exchange-side
// order state is unaffected.
type MemorySignalStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*SignalRecord
}

var _ SignalStore = (*MemorySignalStore)(nil)

func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{records: make(map[int64]*SignalRecord)}
}

func (s *MemorySignalStore) Insert(ctx context.Context, rec *SignalRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	clone := *rec
	clone.ID = s.nextID
	s.records[clone.ID] = &clone
	return clone.ID, nil
}

func (s *MemorySignalStore) FindByOrderUUID(ctx context.Context, uuid string) (*SignalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *SignalRecord
	for _, rec := range s.records {
		if rec.OrderUUID == nil || *rec.OrderUUID != uuid {
			continue
		}
		if found == nil || rec.ID > found.ID {
			found = rec
		}
	}
	if found == nil {
		return nil, nil
	}
	clone := *found
	return &clone, nil
}

func (s *MemorySignalStore) LatestByMarket(ctx context.Context, market string) (*SignalRecord, error) {
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

func (s *MemorySignalStore) SetOrderUUID(ctx context.Context, id int64, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("trading: signal %d not found", id)
	}
	if rec.OrderUUID == nil {
		rec.OrderUUID = &uuid
	}
	return nil
}

func (s *MemorySignalStore) MarkExecuted(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("trading: signal %d not found", id)
	}
	rec.OrderExecuted = true
	return nil
}

func (s *MemorySignalStore) SetFailure(ctx context.Context, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("trading: signal %d not found", id)
	}
	rec.FailureReason = &reason
	return nil
}

// MemoryOrderStore is an in-memory OrderStore keyed by order uuid.
type MemoryOrderStore struct {
	mu      sync.Mutex
	records map[string]*OrderRecord
}

var _ OrderStore = (*MemoryOrderStore)(nil)

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{records: make(map[string]*OrderRecord)}
}

func (s *MemoryOrderStore) Upsert(ctx context.Context, rec *OrderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *rec
	if existing, ok := s.records[rec.UUID]; ok && clone.CreatedAt.IsZero() {
		clone.CreatedAt = existing.CreatedAt
	}
	s.records[rec.UUID] = &clone
	return nil
}

func (s *MemoryOrderStore) RecentByMarket(ctx context.Context, market string, limit int) ([]OrderRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []OrderRecord
	for _, rec := range s.records {
		if rec.Market == market {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
