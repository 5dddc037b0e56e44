package planrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haircarepro/server/internal/domain/careplan"
)

// MemoryRepository keeps care plans in process memory for tests and local dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	plans map[uuid.UUID]careplan.CarePlan
}

// NewMemoryRepository constructs the repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{plans: make(map[uuid.UUID]careplan.CarePlan)}
}

// Create stores the plan.
func (r *MemoryRepository) Create(_ context.Context, plan careplan.CarePlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[plan.ID] = plan
	return nil
}

// ListByOwner returns the owner's plans, newest first.
func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID int64) ([]careplan.CarePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []careplan.CarePlan
	for _, plan := range r.plans {
		if plan.OwnerID == ownerID {
			out = append(out, plan)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListDue applies the same eligibility predicate the Postgres query uses.
func (r *MemoryRepository) ListDue(_ context.Context, day time.Weekday, olderThan time.Time) ([]careplan.CarePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []careplan.CarePlan
	for _, plan := range r.plans {
		if !containsDay(plan.ReminderDays, int(day)) {
			continue
		}
		if plan.LastReminderSent != nil && !plan.LastReminderSent.Before(olderThan) {
			continue
		}
		out = append(out, plan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// MarkReminded applies the conditional stamp under the lock.
func (r *MemoryRepository) MarkReminded(_ context.Context, id uuid.UUID, sentAt, threshold time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan, ok := r.plans[id]
	if !ok {
		return false, nil
	}
	if plan.LastReminderSent != nil && !plan.LastReminderSent.Before(threshold) {
		return false, nil
	}
	plan.LastReminderSent = &sentAt
	r.plans[id] = plan
	return true, nil
}

// Get returns a stored plan, mainly for assertions in tests.
func (r *MemoryRepository) Get(id uuid.UUID) (careplan.CarePlan, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plan, ok := r.plans[id]
	return plan, ok
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

var _ careplan.Repository = (*MemoryRepository)(nil)
