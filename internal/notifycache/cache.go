// Package notifycache maintains a locally cached, polling-refreshed view of
// notifications for low-latency badge and list rendering. The cache is NOT
// the system of record: it mirrors whatever JSON document sits in a single
// key-value slot, refreshes it on a fixed interval plus once at startup, and
// may lag the durable notification log by up to one poll interval. Clearing
// the cache never touches the durable log, and durable writes from another
// session only appear here after the next poll tick.
//
// The cache is an explicit object with an injectable clock (clockwork) so
// tests drive poll ticks deterministically instead of sleeping.
package notifycache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval matches the original panel's 5-second refresh.
const DefaultPollInterval = 5 * time.Second

// CandidateData is the denormalized payload captured at write time so the
// panel renders without a join against the applications table.
type CandidateData struct {
	Name   string `json:"name"`
	IDGame string `json:"id_game"`
	Age    string `json:"age"`
	Phone  string `json:"phone"`
}

// CachedNotification is the local-cache record shape. It mirrors the durable
// Notification plus the denormalized candidate payload; presence in the list
// is what the badge counts, so there is no is_read field here.
type CachedNotification struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Data      CandidateData `json:"data"`
	Timestamp time.Time     `json:"timestamp"`
}

// Cache holds the in-memory mirror of the slot document and persists every
// mutation back to the slot. All methods are safe for concurrent use.
type Cache struct {
	slot     Slot
	clock    clockwork.Clock
	interval time.Duration

	mu    sync.Mutex
	items []CachedNotification
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock injects a clock; tests pass clockwork.NewFakeClock().
func WithClock(clk clockwork.Clock) Option {
	return func(c *Cache) { c.clock = clk }
}

// WithPollInterval overrides the refresh cadence. Values <= 0 keep the default.
func WithPollInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New constructs a Cache over slot with a real clock and the default
// poll interval unless overridden.
func New(slot Slot, opts ...Option) *Cache {
	c := &Cache{
		slot:     slot,
		clock:    clockwork.NewRealClock(),
		interval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory list with the slot's current contents.
// An absent slot yields an empty list, not an error.
func (c *Cache) Load(ctx context.Context) error {
	raw, ok, err := c.slot.Load(ctx)
	if err != nil {
		return err
	}

	var items []CachedNotification
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Append prepends a notification produced in this session and persists the
// updated list. Newest entries render first.
func (c *Cache) Append(ctx context.Context, n CachedNotification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	updated := make([]CachedNotification, 0, len(c.items)+1)
	updated = append(updated, n)
	updated = append(updated, c.items...)
	if err := c.persistLocked(ctx, updated); err != nil {
		return err
	}
	c.items = updated
	return nil
}

// Remove drops one entry by id and persists the updated list. Removing an
// id that is not present is a no-op.
func (c *Cache) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	updated := make([]CachedNotification, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			updated = append(updated, it)
		}
	}
	if err := c.persistLocked(ctx, updated); err != nil {
		return err
	}
	c.items = updated
	return nil
}

// Clear drops every entry and removes the slot document. The durable
// notification log is unaffected.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.slot.Clear(ctx); err != nil {
		return err
	}
	c.items = nil
	return nil
}

// Items returns a copy of the current list, newest first.
func (c *Cache) Items() []CachedNotification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CachedNotification, len(c.items))
	copy(out, c.items)
	return out
}

// Unread returns the badge count. Presence in the list is what counts as
// unread; there is no per-entry read flag locally.
func (c *Cache) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Run refreshes the cache once immediately and then on every poll tick until
// ctx is cancelled. Refresh failures are logged and the loop keeps going;
// a tick that finds the slot unreachable simply leaves the last good view in
// place. Poll ticks are not coordinated with durable writes.
func (c *Cache) Run(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("notification cache initial load failed")
	}

	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := c.Load(ctx); err != nil {
				log.Warn().Err(err).Msg("notification cache refresh failed")
			}
		}
	}
}

// persistLocked marshals items into the slot. Callers must hold c.mu.
func (c *Cache) persistLocked(ctx context.Context, items []CachedNotification) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.slot.Store(ctx, raw)
}
