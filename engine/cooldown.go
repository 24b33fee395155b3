package engine

import (
	"sync"
	"time"
)

// CooldownTracker suppresses repeat alerts for a dedup key inside a time
// window. Entries are overwritten on dispatch and expire by age check, never
// by removal.
type CooldownTracker struct {
	window  time.Duration
	mtx     sync.Mutex
	entries map[string]time.Time
}

// NewCooldownTracker initializes a new cooldown tracker with the provided window.
func NewCooldownTracker(window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		window:  window,
		entries: make(map[string]time.Time),
	}
}

// ShouldSuppress checks whether a signal for the provided dedup key should be
// suppressed. A candidate exactly at the window boundary is not suppressed.
func (c *CooldownTracker) ShouldSuppress(key string, now time.Time) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	last, ok := c.entries[key]
	if !ok {
		return false
	}

	return now.Sub(last) < c.window
}

// RecordDispatch overwrites the last dispatch time for the provided dedup key.
// Only actually dispatched signals may record, a suppressed candidate must
// never refresh the cooldown clock.
func (c *CooldownTracker) RecordDispatch(key string, now time.Time) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.entries[key] = now
}

// LastDispatch returns the recorded dispatch time for the provided dedup key.
func (c *CooldownTracker) LastDispatch(key string) (time.Time, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	last, ok := c.entries[key]
	return last, ok
}

// Clear resets all tracked entries.
func (c *CooldownTracker) Clear() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.entries = make(map[string]time.Time)
}
