package game

import (
	"sync"
	"sync/atomic"
	"time"
)

// LedgerClock derives a ledger sequence from wall time elapsed since a
// genesis instant. The genesis is persisted with the settings so sequences
// keep counting across restarts.
type LedgerClock struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	genesis time.Time
}

func NewLedgerClock(genesis time.Time, interval time.Duration) *LedgerClock {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &LedgerClock{genesis: genesis, interval: interval, now: time.Now}
}

// Genesis is the instant sequence 0 started.
func (c *LedgerClock) Genesis() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.genesis
}

// Resume moves the clock onto a previously stored genesis.
func (c *LedgerClock) Resume(genesis time.Time) {
	c.mu.Lock()
	c.genesis = genesis
	c.mu.Unlock()
}

func (c *LedgerClock) Sequence() uint32 {
	elapsed := c.now().Sub(c.Genesis())
	if elapsed < 0 {
		return 0
	}
	n := int64(elapsed / c.interval)
	if n > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n)
}

// Interval is the wall time one sequence represents.
func (c *LedgerClock) Interval() time.Duration {
	return c.interval
}

// ManualClock is advanced explicitly; used by tools and tests.
type ManualClock struct {
	seq atomic.Uint32
}

func NewManualClock(start uint32) *ManualClock {
	c := &ManualClock{}
	c.seq.Store(start)
	return c
}

func (c *ManualClock) Sequence() uint32 {
	return c.seq.Load()
}

func (c *ManualClock) Advance(n uint32) uint32 {
	return c.seq.Add(n)
}
