package locking

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrAcquireTimeout is returned when a lock cannot be obtained within the
// configured wait budget. Callers should surface it as a retryable condition.
var ErrAcquireTimeout = errors.New("lock acquisition timed out")

type entry struct {
	ch   chan struct{}
	refs int
}

// Guard serializes writers per key (one key per product). Allocation and
// quarantine both read-then-write the same stock rows, so they must hold the
// product keys they touch from eligibility check until commit.
type Guard struct {
	mu    sync.Mutex // guards the locks map
	locks map[string]*entry
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*entry)}
}

func (g *Guard) get(key string) *entry {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		g.locks[key] = e
	}
	e.refs++
	return e
}

func (g *Guard) put(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.locks[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(g.locks, key)
	}
}

// Acquire takes the lock for a single key, waiting at most wait.
// The returned release function must be called exactly once.
func (g *Guard) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	e := g.get(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.ch <- struct{}{}:
		return func() {
			<-e.ch
			g.put(key)
		}, nil
	case <-timer.C:
		g.put(key)
		return nil, ErrAcquireTimeout
	case <-ctx.Done():
		g.put(key)
		return nil, ctx.Err()
	}
}

// AcquireAll takes the locks for every key, sharing a single wait budget.
// Keys are deduplicated and acquired in sorted order so two callers locking
// overlapping key sets can never deadlock each other.
func (g *Guard) AcquireAll(ctx context.Context, keys []string, wait time.Duration) (func(), error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			sorted = append(sorted, k)
		}
	}
	sort.Strings(sorted)

	deadline := time.Now().Add(wait)
	releases := make([]func(), 0, len(sorted))

	rollback := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range sorted {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			rollback()
			return nil, ErrAcquireTimeout
		}
		release, err := g.Acquire(ctx, key, remaining)
		if err != nil {
			rollback()
			return nil, err
		}
		releases = append(releases, release)
	}

	return rollback, nil
}
