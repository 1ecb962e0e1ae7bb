package runtime

import (
	"sync"
	"time"
)

// deliveries remembers which correlation keys were already routed so a
// request id redelivered by the bus is forwarded at most once per window.
// A zero window disables the check.
type deliveries struct {
	mu        sync.Mutex
	window    time.Duration
	seen      map[string]time.Time
	lastPrune time.Time
	now       func() time.Time
}

func newDeliveries(window time.Duration) *deliveries {
	return &deliveries{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// first reports whether key is seen for the first time inside the window,
// and records it.
func (d *deliveries) first(key string) bool {
	if d.window <= 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.Sub(d.lastPrune) >= d.window {
		d.prune(now)
	}
	if at, ok := d.seen[key]; ok && now.Sub(at) < d.window {
		return false
	}
	d.seen[key] = now
	return true
}

func (d *deliveries) prune(now time.Time) {
	for key, at := range d.seen {
		if now.Sub(at) >= d.window {
			delete(d.seen, key)
		}
	}
	d.lastPrune = now
}

func (d *deliveries) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
