package gencache

import (
	"context"
	"sync"
	"time"

	"github.com/haircarepro/server/internal/domain/careplan"
)

type cachedPlan struct {
	payload   careplan.RawPlan
	expiresAt time.Time
}

// MemoryStore is an in-memory generation cache for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]cachedPlan
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]cachedPlan)}
}

// Get implements careplan.Cache.
func (s *MemoryStore) Get(_ context.Context, key string) (careplan.RawPlan, bool, error) {
	if key == "" {
		return careplan.RawPlan{}, false, nil
	}
	s.mu.RLock()
	record, ok := s.plans[key]
	s.mu.RUnlock()
	if !ok {
		return careplan.RawPlan{}, false, nil
	}
	if hasExpired(record.expiresAt) {
		s.mu.Lock()
		delete(s.plans, key)
		s.mu.Unlock()
		return careplan.RawPlan{}, false, nil
	}
	return record.payload, true, nil
}

// Save caches the payload with optional TTL.
func (s *MemoryStore) Save(_ context.Context, key string, plan careplan.RawPlan, ttl time.Duration) error {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.plans[key] = cachedPlan{payload: plan, expiresAt: exp}
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ careplan.Cache = (*MemoryStore)(nil)
