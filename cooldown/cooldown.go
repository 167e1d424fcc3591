// Package cooldown spaces out repeat shipment attempts for the same order
// number. Shopify delivers webhooks at-least-once and duplicates tend to
// arrive within seconds of each other; waiting out the remainder of the
// window absorbs those. This is deliberately a cooldown, not a dedup set:
// two deliveries farther apart than the window both proceed, so a late
// redelivery can still create a duplicate shipment. Downstream retry
// behavior depends on that, so the window semantics stay.
package cooldown

import (
	"sync"
	"time"
)

// Guard tracks the last successful shipment creation per order number.
type Guard interface {
	// Delay returns how long the caller must wait before attempting
	// another shipment for the order number. Zero means go ahead.
	Delay(orderNumber string) time.Duration
	// RecordSuccess marks a successful shipment creation. Only successes
	// count; failed attempts do not start a window.
	RecordSuccess(orderNumber string, at time.Time)
}

// MemoryGuard keeps the window map in process memory. Entries are evicted
// once they are far older than the window so the map stays bounded.
type MemoryGuard struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    func() time.Time
	stop   chan struct{}
}

// evictionFactor times the window is how long an entry may linger before
// the janitor drops it.
const evictionFactor = 10

func NewMemoryGuard(window time.Duration) *MemoryGuard {
	g := &MemoryGuard{
		window: window,
		last:   make(map[string]time.Time),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	go g.janitor()
	return g
}

func (g *MemoryGuard) Delay(orderNumber string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	last, ok := g.last[orderNumber]
	if !ok {
		return 0
	}
	elapsed := g.now().Sub(last)
	if elapsed >= g.window {
		return 0
	}
	return g.window - elapsed
}

func (g *MemoryGuard) RecordSuccess(orderNumber string, at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[orderNumber] = at
}

func (g *MemoryGuard) Close() {
	select {
	case g.stop <- struct{}{}:
	default:
	}
}

func (g *MemoryGuard) janitor() {
	ticker := time.NewTicker(g.window * evictionFactor / 2)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.evict()
		}
	}
}

func (g *MemoryGuard) evict() {
	cutoff := g.now().Add(-g.window * evictionFactor)
	g.mu.Lock()
	defer g.mu.Unlock()
	for k, t := range g.last {
		if t.Before(cutoff) {
			delete(g.last, k)
		}
	}
}
