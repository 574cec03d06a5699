package authz

import (
	"testing"
	"time"
)

func TestDecisionCacheStoresBothVerdicts(t *testing.T) {
	c := NewDecisionCache(DecisionTTL)
	editor := []string{"Editor"}
	c.Put(DecisionKey(1, "/admin/blogs", editor), true)
	c.Put(DecisionKey(1, "/admin/settings", editor), false)

	if allowed, ok := c.Get(DecisionKey(1, "/admin/blogs", editor)); !ok || !allowed {
		t.Fatalf("expected cached allow, got allowed=%v ok=%v", allowed, ok)
	}
	if allowed, ok := c.Get(DecisionKey(1, "/admin/settings", editor)); !ok || allowed {
		t.Fatalf("expected cached deny, got allowed=%v ok=%v", allowed, ok)
	}
	if _, ok := c.Get(DecisionKey(2, "/admin/blogs", editor)); ok {
		t.Fatalf("decisions must be scoped per principal")
	}
}

func TestDecisionKeySeparatesRoleSets(t *testing.T) {
	c := NewDecisionCache(DecisionTTL)
	c.Put(DecisionKey(1, "/admin/blogs", []string{"Editor"}), true)

	// Same principal and path with a different role set must miss, so an
	// earlier allow never answers for a session whose roles changed.
	if _, ok := c.Get(DecisionKey(1, "/admin/blogs", []string{"Viewer"})); ok {
		t.Fatalf("decisions must be scoped per role set")
	}

	// Claim ordering does not matter.
	a := DecisionKey(1, "/admin/blogs", []string{"Editor", "Viewer"})
	b := DecisionKey(1, "/admin/blogs", []string{"Viewer", "Editor"})
	if a != b {
		t.Fatalf("key depends on role order: %q vs %q", a, b)
	}
}

func TestDecisionCacheExpiresAfterTTL(t *testing.T) {
	c := NewDecisionCache(DecisionTTL)
	current := time.Now()
	c.now = func() time.Time { return current }

	key := DecisionKey(1, "/admin/blogs", []string{"Editor"})
	c.Put(key, true)

	current = current.Add(DecisionTTL - time.Second)
	if _, ok := c.Get(key); !ok {
		t.Fatalf("entry expired before TTL elapsed")
	}

	current = current.Add(2 * time.Second)
	if _, ok := c.Get(key); ok {
		t.Fatalf("entry survived past TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should have been dropped, len=%d", c.Len())
	}
}

func TestDecisionCacheClear(t *testing.T) {
	c := NewDecisionCache(DecisionTTL)
	c.Put(DecisionKey(1, "/admin/blogs", []string{"Editor"}), true)
	c.Put(DecisionKey(2, "/admin/blogs", []string{"Viewer"}), false)

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, len=%d", c.Len())
	}
}
