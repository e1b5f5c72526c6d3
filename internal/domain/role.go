package domain

// Action represents a specific operation that can be performed on a resource.
// Actions are opaque identifiers; the engine never interprets them beyond
// equality and the wildcard.
type Action string

const (
	ActionView          Action = "view"
	ActionEdit          Action = "edit"
	ActionDelete        Action = "delete"
	ActionComment       Action = "comment"
	ActionExecute       Action = "execute"
	ActionManageMembers Action = "manage_members"

	// ActionWildcard matches every action. Only role permission sets carry
	// it; resource overrides never do.
	ActionWildcard Action = "*"
)

// Role represents a named privilege tier within a workspace.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// roleHierarchy orders roles by increasing privilege. The order is fixed and
// drives both default-permission lookup and explicit role comparison.
var roleHierarchy = []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}

// rolePermissions maps each role to its default granted actions. The owner
// set is the wildcard singleton; callers must match it explicitly rather
// than expect a pre-expanded action list.
var rolePermissions = map[Role][]Action{
	RoleViewer: {ActionView, ActionExecute},
	RoleEditor: {ActionView, ActionEdit, ActionComment, ActionExecute},
	RoleAdmin:  {ActionView, ActionEdit, ActionDelete, ActionComment, ActionExecute, ActionManageMembers},
	RoleOwner:  {ActionWildcard},
}

// ValidRole returns true if the role is a known predefined role.
func ValidRole(r Role) bool {
	_, ok := rolePermissions[r]
	return ok
}

// RolePermissions returns the default action set for a role. The returned
// slice is a copy; mutating it does not affect the table. Unknown roles get
// an empty set.
func RolePermissions(r Role) []Action {
	perms, ok := rolePermissions[r]
	if !ok {
		return nil
	}
	out := make([]Action, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether the role's default set contains the
// action, counting the wildcard as a match for anything.
func RoleHasPermission(r Role, action Action) bool {
	for _, a := range rolePermissions[r] {
		if a == action || a == ActionWildcard {
			return true
		}
	}
	return false
}

// RoleHierarchy returns the roles ordered lowest privilege first. The
// returned slice is a copy and stable across calls.
func RoleHierarchy() []Role {
	out := make([]Role, len(roleHierarchy))
	copy(out, roleHierarchy)
	return out
}

// roleIndex returns the hierarchy index of a role, or -1 for unknown roles
// so that any valid role outranks an invalid one.
func roleIndex(r Role) int {
	for i, role := range roleHierarchy {
		if role == r {
			return i
		}
	}
	return -1
}

// CompareRoles returns the difference of hierarchy indices: positive when a
// outranks b, negative when a is weaker, zero when equal.
func CompareRoles(a, b Role) int {
	return roleIndex(a) - roleIndex(b)
}

// RoleCanActAs reports whether role a may act as role b, i.e. a holds rank
// at or above b. Every role can act as itself.
func RoleCanActAs(a, b Role) bool {
	return CompareRoles(a, b) >= 0
}
