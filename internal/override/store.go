// Package override holds per-resource explicit grant/revoke state that takes
// precedence over role defaults. Grant and revoke sets are independent: a
// revoke is removed only by clearing the resource's overrides, never by a
// later grant of the same action.
package override

import (
	"context"
	"sync"

	"github.com/oriys/polaris/internal/domain"
)

// Store is the override lookup and mutation surface consumed by the
// permission engine. Implementations must be safe for concurrent use.
type Store interface {
	// Grant adds action to the grant set for (resourceID, userID).
	// Granting an already-granted action is a no-op.
	Grant(ctx context.Context, resourceID, userID string, action domain.Action) error

	// Revoke adds action to the revoke set for (resourceID, userID).
	// Idempotent; a revoke outranks any grant regardless of call order.
	Revoke(ctx context.Context, resourceID, userID string, action domain.Action) error

	// Clear removes all grant and revoke records for every principal on
	// the resource. Used for resource teardown.
	Clear(ctx context.Context, resourceID string) error

	// IsGranted reports whether the action is explicitly granted. Exact
	// action match only; wildcard semantics belong to the role table.
	IsGranted(ctx context.Context, resourceID, userID string, action domain.Action) (bool, error)

	// IsRevoked reports whether the action is explicitly revoked.
	IsRevoked(ctx context.Context, resourceID, userID string, action domain.Action) (bool, error)
}

type actionSet map[domain.Action]struct{}

// record holds the grant and revoke sets for one (resource, user) pair.
type record struct {
	grants  actionSet
	revokes actionSet
}

// MemoryStore is the default in-process override store. It has its own lock,
// not shared with the decision cache or any other component.
type MemoryStore struct {
	mu sync.RWMutex
	// keyed by resource ID, then user ID
	records map[string]map[string]*record
}

// NewMemoryStore creates an empty in-memory override store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]map[string]*record)}
}

func (s *MemoryStore) recordFor(resourceID, userID string) *record {
	users, ok := s.records[resourceID]
	if !ok {
		users = make(map[string]*record)
		s.records[resourceID] = users
	}
	rec, ok := users[userID]
	if !ok {
		rec = &record{grants: make(actionSet), revokes: make(actionSet)}
		users[userID] = rec
	}
	return rec
}

func (s *MemoryStore) Grant(_ context.Context, resourceID, userID string, action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordFor(resourceID, userID).grants[action] = struct{}{}
	return nil
}

func (s *MemoryStore) Revoke(_ context.Context, resourceID, userID string, action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordFor(resourceID, userID).revokes[action] = struct{}{}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, resourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, resourceID)
	return nil
}

func (s *MemoryStore) IsGranted(_ context.Context, resourceID, userID string, action domain.Action) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[resourceID][userID]; ok {
		_, granted := rec.grants[action]
		return granted, nil
	}
	return false, nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, resourceID, userID string, action domain.Action) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[resourceID][userID]; ok {
		_, revoked := rec.revokes[action]
		return revoked, nil
	}
	return false, nil
}
