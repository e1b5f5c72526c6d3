// Package cache memoizes authorization decisions for a short freshness
// window so repeated checks of the same (principal, resource, action) tuple
// skip membership resolution. Implementations may be in-process (default)
// or Redis-backed for multi-instance deployments.
package cache

import (
	"context"
	"time"

	"github.com/oriys/polaris/internal/domain"
)

// DefaultTTL bounds how long a cached decision stays fresh. Short enough
// that membership and override changes surface quickly, long enough that
// back-to-back checks in one logical operation hit the cache.
const DefaultTTL = 5 * time.Second

// Key identifies a single cached decision.
type Key struct {
	UserID       string
	ResourceType string
	ResourceID   string
	Action       domain.Action
}

// String renders the key for backends that need a flat keyspace.
func (k Key) String() string {
	return k.UserID + "\x00" + k.ResourceType + "\x00" + k.ResourceID + "\x00" + string(k.Action)
}

// DecisionCache stores recent decisions with TTL-based expiry. All
// operations are safe for concurrent use. Lookups and mutations are best
// effort: backends that can fail report a miss rather than an error so the
// decision path stays total.
type DecisionCache interface {
	// Get returns the cached decision and true on a fresh hit. Absent or
	// expired entries report a miss.
	Get(ctx context.Context, key Key) (domain.Decision, bool)

	// Put stores a decision, overwriting any previous entry and resetting
	// its creation timestamp.
	Put(ctx context.Context, key Key, d domain.Decision)

	// Size returns the number of entries currently stored. Repeated Get
	// calls on a still-valid key never change it.
	Size(ctx context.Context) int

	// Clear removes all entries.
	Clear(ctx context.Context)

	// Close releases backend resources.
	Close() error
}
