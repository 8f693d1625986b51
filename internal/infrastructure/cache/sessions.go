// Package cache keeps per-client navigation state in memory with idle expiry.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"

	"arpscout/internal/domain/arp"
	"arpscout/pkg/logger"
)

// DefaultIdleTimeout is how long an untouched session survives.
const DefaultIdleTimeout = 30 * time.Minute

// SessionCache maps session ids to their Pager. Every hit refreshes the idle
// timeout; expired sessions are evicted by the loop started with Start.
type SessionCache struct {
	searcher arp.Searcher
	store    *ttlcache.Cache[string, *arp.Pager]

	// Lifecycle
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup
	started     bool
}

// NewSessionCache creates an empty cache. idle <= 0 uses DefaultIdleTimeout.
func NewSessionCache(searcher arp.Searcher, idle time.Duration) *SessionCache {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}

	store := ttlcache.New(
		ttlcache.WithTTL[string, *arp.Pager](idle),
	)
	store.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *arp.Pager]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		logger.Debug(ctx, "session expired", "session_id", item.Key())
	})

	return &SessionCache{searcher: searcher, store: store}
}

// Acquire returns the Pager of id, creating the session when needed. An empty
// or malformed id gets a fresh one; the returned id is the one to hand back to
// the client.
func (c *SessionCache) Acquire(id string) (string, *arp.Pager) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	if item := c.store.Get(id); item != nil {
		return id, item.Value()
	}
	item, _ := c.store.GetOrSet(id, arp.NewPager(c.searcher))
	return id, item.Value()
}

// Lookup returns the Pager of an existing, live session without creating one.
func (c *SessionCache) Lookup(id string) (*arp.Pager, bool) {
	if id == "" {
		return nil, false
	}
	item := c.store.Get(id)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

// Len returns the number of stored sessions, expired ones included until evicted.
func (c *SessionCache) Len() int {
	return c.store.Len()
}

// Start runs the eviction loop in the background until Stop is called.
func (c *SessionCache) Start() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if c.started {
		return
	}
	c.started = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.store.Start()
	}()
}

// Running reports whether the eviction loop is active.
func (c *SessionCache) Running() bool {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.started
}

// Stop halts the eviction loop and waits for it to exit.
func (c *SessionCache) Stop() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	if !c.started {
		return
	}
	c.started = false

	c.store.Stop()
	c.wg.Wait()
}
