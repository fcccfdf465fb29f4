package events

import (
	"context"
	"sync"
	"time"
)

// MemoryBudget allows at most limit warehouse calls per UTC day within one
// process. A non-positive limit is unlimited.
type MemoryBudget struct {
	limit int
	now   func() time.Time

	mu    sync.Mutex
	day   string
	count int
}

func NewMemoryBudget(limit int, now func() time.Time) *MemoryBudget {
	if now == nil {
		now = time.Now
	}
	return &MemoryBudget{limit: limit, now: now}
}

func (b *MemoryBudget) Allow(_ context.Context) (bool, error) {
	if b.limit <= 0 {
		return true, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	day := b.now().UTC().Format("20060102")
	if day != b.day {
		b.day = day
		b.count = 0
	}
	if b.count >= b.limit {
		return false, nil
	}
	b.count++
	return true, nil
}
