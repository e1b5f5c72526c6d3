// Package membership answers "what role, if any, does a principal hold in a
// workspace." The engine consumes the Resolver interface; workspace and
// identity management own the data.
package membership

import (
	"context"
	"sync"

	"github.com/oriys/polaris/internal/domain"
)

// Resolver resolves workspace ownership and member roles. Lookups may
// involve I/O (a remote or database-backed membership store); the in-memory
// Registry never blocks.
type Resolver interface {
	// ResolveOwner returns the user id of the workspace owner, or "" when
	// the workspace is unknown.
	ResolveOwner(ctx context.Context, workspaceID string) (string, error)

	// ResolveMember returns the member's recorded role. The bool is false
	// when no membership record exists.
	ResolveMember(ctx context.Context, workspaceID, userID string) (domain.Role, bool, error)
}

type workspace struct {
	ownerID string
	members map[string]domain.Role
}

// Registry is an in-memory membership store, used by tests, the CLI fixture
// loader, and embedders that manage membership themselves.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*workspace
}

// NewRegistry creates an empty membership registry.
func NewRegistry() *Registry {
	return &Registry{workspaces: make(map[string]*workspace)}
}

// CreateWorkspace registers a workspace with its owner. Re-creating an
// existing workspace replaces its owner and keeps its members.
func (r *Registry) CreateWorkspace(workspaceID, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		ws = &workspace{members: make(map[string]domain.Role)}
		r.workspaces[workspaceID] = ws
	}
	ws.ownerID = ownerID
}

// SetMember records a member's role in a workspace, creating the workspace
// implicitly if needed.
func (r *Registry) SetMember(workspaceID, userID string, role domain.Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		ws = &workspace{members: make(map[string]domain.Role)}
		r.workspaces[workspaceID] = ws
	}
	ws.members[userID] = role
}

// RemoveMember deletes a membership record. Removing an unknown member is a
// no-op.
func (r *Registry) RemoveMember(workspaceID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.workspaces[workspaceID]; ok {
		delete(ws.members, userID)
	}
}

func (r *Registry) ResolveOwner(_ context.Context, workspaceID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ws, ok := r.workspaces[workspaceID]; ok {
		return ws.ownerID, nil
	}
	return "", nil
}

func (r *Registry) ResolveMember(_ context.Context, workspaceID, userID string) (domain.Role, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if ws, ok := r.workspaces[workspaceID]; ok {
		if role, ok := ws.members[userID]; ok {
			return role, true, nil
		}
	}
	return "", false, nil
}
