package store

import (
	"sync"
	"time"
)

// idGen issues creation-time-derived identifiers: the current Unix
// millisecond, bumped by one whenever two records are created within the
// same millisecond so ids stay strictly increasing (the event-ordering
// tie-break depends on this).
type idGen struct {
	mu   sync.Mutex
	last int64
}

func (g *idGen) next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// seed moves the generator past every id already in use, so ids loaded from
// storage are never reissued.
func (g *idGen) seed(id int64) {
	g.mu.Lock()
	if id > g.last {
		g.last = id
	}
	g.mu.Unlock()
}
