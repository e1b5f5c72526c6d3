package domain

// Resource identifies the target of an authorization check. Resources are
// supplied by the caller; the engine never creates, stores, or mutates them.
type Resource struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	WorkspaceID string `json:"workspace_id"`
}

// Decision is the outcome of a single authorization check. Reason is empty
// on allow and names the denial cause on deny.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allow returns an allowing decision with no reason.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision carrying the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
