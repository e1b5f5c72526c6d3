// Package engine implements the authorization decision pipeline: resolve
// the principal's role in the resource's workspace, apply explicit
// per-resource overrides, fall back to role defaults, and memoize the
// result. The decision path is total: failures surface as denials with a
// reason, never as errors.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/oriys/polaris/internal/cache"
	"github.com/oriys/polaris/internal/domain"
	"github.com/oriys/polaris/internal/logging"
	"github.com/oriys/polaris/internal/membership"
	"github.com/oriys/polaris/internal/metrics"
	"github.com/oriys/polaris/internal/observability"
	"github.com/oriys/polaris/internal/override"
)

// Denial categories, greppable in logs and metrics.
const (
	CategoryNotAMember       = "not_a_member"
	CategoryExplicitDeny     = "explicit_deny"
	CategoryRoleInsufficient = "role_insufficient"
)

// CheckRequest is one entry of a batch check.
type CheckRequest struct {
	Resource domain.Resource `json:"resource"`
	Action   domain.Action   `json:"action"`
}

// Engine evaluates authorization checks. It is stateless per call except
// for the decision cache and override store, each of which carries its own
// exclusion discipline; concurrent checks for different keys do not
// interfere.
type Engine struct {
	resolver  membership.Resolver
	overrides override.Store
	decisions cache.DecisionCache
	audit     *logging.AuditLogger
}

// New creates an Engine. The membership resolver is required; a nil
// override store or decision cache falls back to the in-memory defaults.
func New(resolver membership.Resolver, overrides override.Store, decisions cache.DecisionCache) *Engine {
	if overrides == nil {
		overrides = override.NewMemoryStore()
	}
	if decisions == nil {
		decisions = cache.NewInMemoryCache(0)
	}
	return &Engine{
		resolver:  resolver,
		overrides: overrides,
		decisions: decisions,
	}
}

// SetAuditLogger attaches a decision audit logger. Pass nil to disable.
func (e *Engine) SetAuditLogger(l *logging.AuditLogger) {
	e.audit = l
}

// UserRole resolves the principal's effective role in a workspace. The
// workspace owner is always RoleOwner regardless of any separate membership
// record. Resolver failures are logged and treated as "no membership", so
// outages fail closed.
func (e *Engine) UserRole(ctx context.Context, userID, workspaceID string) (domain.Role, bool) {
	owner, err := e.resolver.ResolveOwner(ctx, workspaceID)
	if err != nil {
		logging.Op().Warn("owner resolution failed",
			"workspace_id", workspaceID,
			"user_id", userID,
			"error", err,
		)
		return "", false
	}
	if owner != "" && owner == userID {
		return domain.RoleOwner, true
	}

	role, ok, err := e.resolver.ResolveMember(ctx, workspaceID, userID)
	if err != nil {
		logging.Op().Warn("member resolution failed",
			"workspace_id", workspaceID,
			"user_id", userID,
			"error", err,
		)
		return "", false
	}
	return role, ok
}

// Check decides whether userID may perform action on resource. Results are
// cached per (user, resource type, resource id, action) for the cache's TTL;
// a cached result is returned unchanged.
func (e *Engine) Check(ctx context.Context, userID string, resource domain.Resource, action domain.Action) domain.Decision {
	start := time.Now()

	ctx, span := observability.StartSpan(ctx, "polaris.check",
		observability.AttrUserID.String(userID),
		observability.AttrWorkspaceID.String(resource.WorkspaceID),
		observability.AttrResourceID.String(resource.ID),
		observability.AttrResourceType.String(resource.Type),
		observability.AttrAction.String(string(action)),
	)
	defer span.End()

	key := cache.Key{
		UserID:       userID,
		ResourceType: resource.Type,
		ResourceID:   resource.ID,
		Action:       action,
	}

	if d, ok := e.decisions.Get(ctx, key); ok {
		e.finish(span, userID, resource, action, d, "", true, start)
		return d
	}

	d, category := e.decide(ctx, userID, resource, action)
	e.decisions.Put(ctx, key, d)
	e.finish(span, userID, resource, action, d, category, false, start)
	return d
}

// decide runs the uncached pipeline: membership, revoke, grant, role
// default, in that order of precedence.
func (e *Engine) decide(ctx context.Context, userID string, resource domain.Resource, action domain.Action) (domain.Decision, string) {
	role, ok := e.UserRole(ctx, userID, resource.WorkspaceID)
	if !ok {
		return domain.Deny(fmt.Sprintf("%s is not a member of the workspace", userID)), CategoryNotAMember
	}

	// Revokes are consulted before grants and role defaults for every
	// role, owner included.
	revoked, err := e.overrides.IsRevoked(ctx, resource.ID, userID, action)
	if err != nil {
		logging.Op().Warn("revoke lookup failed", "resource_id", resource.ID, "user_id", userID, "error", err)
	}
	if revoked {
		metrics.RecordOverrideHit("revoke")
		return domain.Deny(fmt.Sprintf("%s on resource %s explicitly denied for %s", action, resource.ID, userID)), CategoryExplicitDeny
	}

	granted, err := e.overrides.IsGranted(ctx, resource.ID, userID, action)
	if err != nil {
		logging.Op().Warn("grant lookup failed", "resource_id", resource.ID, "user_id", userID, "error", err)
	}
	if granted {
		metrics.RecordOverrideHit("grant")
		return domain.Allow(), ""
	}

	if domain.RoleHasPermission(role, action) {
		return domain.Allow(), ""
	}
	return domain.Deny(fmt.Sprintf("role %s lacks permission %s", role, action)), CategoryRoleInsufficient
}

// reasonCategory recovers the denial category from a decision's reason,
// used when a cached decision is served and the category was not carried.
func reasonCategory(d domain.Decision) string {
	switch {
	case d.Allowed:
		return ""
	case strings.Contains(d.Reason, "not a member"):
		return CategoryNotAMember
	case strings.Contains(d.Reason, "explicitly denied"):
		return CategoryExplicitDeny
	default:
		return CategoryRoleInsufficient
	}
}

// finish records the outcome on the span, in metrics, and in the audit log.
func (e *Engine) finish(span trace.Span, userID string, resource domain.Resource, action domain.Action, d domain.Decision, category string, fromCache bool, start time.Time) {
	elapsed := time.Since(start)
	if category == "" {
		category = reasonCategory(d)
	}

	span.SetAttributes(
		observability.AttrAllowed.Bool(d.Allowed),
		observability.AttrFromCache.Bool(fromCache),
	)
	if d.Reason != "" {
		span.SetAttributes(observability.AttrReason.String(d.Reason))
	}

	metrics.RecordCheck(d.Allowed, category, float64(elapsed.Microseconds())/1000.0, fromCache)

	if e.audit != nil {
		e.audit.Log(&logging.DecisionLog{
			UserID:       userID,
			WorkspaceID:  resource.WorkspaceID,
			ResourceID:   resource.ID,
			ResourceType: resource.Type,
			Action:       string(action),
			Allowed:      d.Allowed,
			Reason:       d.Reason,
			FromCache:    fromCache,
			DurationMs:   elapsed.Milliseconds(),
		})
	}
}

// CheckBatch runs Check for every entry and assembles results keyed by
// "<resource type>:<action>". Duplicate type:action pairs collapse to one
// entry; ordering of the input does not affect any result.
func (e *Engine) CheckBatch(ctx context.Context, userID string, checks []CheckRequest) map[string]domain.Decision {
	metrics.RecordBatchSize(len(checks))
	results := make(map[string]domain.Decision, len(checks))
	for _, c := range checks {
		key := c.Resource.Type + ":" + string(c.Action)
		if _, done := results[key]; done {
			continue
		}
		results[key] = e.Check(ctx, userID, c.Resource, c.Action)
	}
	return results
}

// GrantResourcePermission adds an explicit grant. Idempotent.
func (e *Engine) GrantResourcePermission(ctx context.Context, resourceID, userID string, action domain.Action) error {
	return e.overrides.Grant(ctx, resourceID, userID, action)
}

// RevokeResourcePermission adds an explicit revoke. Idempotent; outranks
// any grant regardless of call order.
func (e *Engine) RevokeResourcePermission(ctx context.Context, resourceID, userID string, action domain.Action) error {
	return e.overrides.Revoke(ctx, resourceID, userID, action)
}

// ClearResourcePermissions removes every override on a resource. It does
// not touch the decision cache: a stale cached decision for the resource
// may persist until its TTL expires or ClearCache is called.
func (e *Engine) ClearResourcePermissions(ctx context.Context, resourceID string) error {
	return e.overrides.Clear(ctx, resourceID)
}

// CacheSize returns the current decision cache entry count.
func (e *Engine) CacheSize(ctx context.Context) int {
	n := e.decisions.Size(ctx)
	metrics.SetCacheEntries(n)
	return n
}

// ClearCache removes every cached decision.
func (e *Engine) ClearCache(ctx context.Context) {
	e.decisions.Clear(ctx)
	metrics.SetCacheEntries(0)
}

// RolePermissions returns the default action set for a role.
func (e *Engine) RolePermissions(role domain.Role) []domain.Action {
	return domain.RolePermissions(role)
}

// RoleHasPermission reports whether the role's default set covers action.
func (e *Engine) RoleHasPermission(role domain.Role, action domain.Action) bool {
	return domain.RoleHasPermission(role, action)
}

// RoleHierarchy returns the fixed role order, lowest privilege first.
func RoleHierarchy() []domain.Role {
	return domain.RoleHierarchy()
}

// CompareRoles returns the rank difference between two roles.
func CompareRoles(a, b domain.Role) int {
	return domain.CompareRoles(a, b)
}

// RoleCanActAs reports whether role a holds rank at or above role b.
func RoleCanActAs(a, b domain.Role) bool {
	return domain.RoleCanActAs(a, b)
}
