package authz

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DecisionTTL bounds how long a cached access decision stays valid.
const DecisionTTL = 5 * time.Minute

type decision struct {
	allowed bool
	at      time.Time
}

// DecisionCache remembers recent access decisions keyed by principal, path
// and role set. Allow and deny are cached identically; only elapsed time
// invalidates an entry. The cache is in-process only and never persisted.
type DecisionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]decision
	now     func() time.Time
}

func NewDecisionCache(ttl time.Duration) *DecisionCache {
	if ttl <= 0 {
		ttl = DecisionTTL
	}
	return &DecisionCache{
		ttl:     ttl,
		entries: make(map[string]decision),
		now:     time.Now,
	}
}

// DecisionKey builds the cache key for one principal, path and role set.
// Roles are sorted first so the key is stable across claim ordering, and a
// session carrying a changed role set never replays another set's decision.
func DecisionKey(userID uint, path string, roles []string) string {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)
	return strconv.FormatUint(uint64(userID), 10) + ":" + path + ":" + strings.Join(sorted, ",")
}

// Get returns a cached decision. Expired entries count as misses and are
// dropped.
func (c *DecisionCache) Get(key string) (allowed, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.entries[key]
	if !ok {
		return false, false
	}
	if c.now().Sub(d.at) >= c.ttl {
		delete(c.entries, key)
		return false, false
	}
	return d.allowed, true
}

// Put stores a decision with the current timestamp.
func (c *DecisionCache) Put(key string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = decision{allowed: allowed, at: c.now()}
}

// Clear empties the cache unconditionally.
func (c *DecisionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]decision)
}

// Len reports the number of live entries, expired ones included.
func (c *DecisionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
