package domain

import "testing"

func TestValidRole(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleViewer, true},
		{RoleEditor, true},
		{RoleAdmin, true},
		{RoleOwner, true},
		{Role("superadmin"), false},
		{Role(""), false},
	}
	for _, tt := range tests {
		if got := ValidRole(tt.role); got != tt.want {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleHierarchy_Order(t *testing.T) {
	want := []Role{RoleViewer, RoleEditor, RoleAdmin, RoleOwner}
	got := RoleHierarchy()
	if len(got) != len(want) {
		t.Fatalf("RoleHierarchy() returned %d roles, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RoleHierarchy()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRoleHierarchy_ReturnsCopy(t *testing.T) {
	first := RoleHierarchy()
	first[0] = Role("mutated")
	second := RoleHierarchy()
	if second[0] != RoleViewer {
		t.Fatal("RoleHierarchy() should return a copy, not the internal slice")
	}
}

func TestCompareRoles(t *testing.T) {
	tests := []struct {
		a, b Role
		sign int // -1, 0, or 1
	}{
		{RoleAdmin, RoleViewer, 1},
		{RoleViewer, RoleAdmin, -1},
		{RoleEditor, RoleEditor, 0},
		{RoleOwner, RoleAdmin, 1},
		{RoleViewer, Role("bogus"), 1},
		{Role("bogus"), RoleViewer, -1},
	}
	for _, tt := range tests {
		got := CompareRoles(tt.a, tt.b)
		switch {
		case tt.sign > 0 && got <= 0:
			t.Errorf("CompareRoles(%q, %q) = %d, want > 0", tt.a, tt.b, got)
		case tt.sign < 0 && got >= 0:
			t.Errorf("CompareRoles(%q, %q) = %d, want < 0", tt.a, tt.b, got)
		case tt.sign == 0 && got != 0:
			t.Errorf("CompareRoles(%q, %q) = %d, want 0", tt.a, tt.b, got)
		}
	}
}

func TestRoleCanActAs(t *testing.T) {
	if !RoleCanActAs(RoleAdmin, RoleViewer) {
		t.Error("admin should be able to act as viewer")
	}
	if RoleCanActAs(RoleViewer, RoleAdmin) {
		t.Error("viewer should not be able to act as admin")
	}
	for _, r := range RoleHierarchy() {
		if !RoleCanActAs(r, r) {
			t.Errorf("role %q should be able to act as itself", r)
		}
	}
}

func TestRoleHasPermission_Defaults(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleViewer, ActionView, true},
		{RoleViewer, ActionExecute, true},
		{RoleViewer, ActionEdit, false},
		{RoleEditor, ActionEdit, true},
		{RoleEditor, ActionComment, true},
		{RoleEditor, ActionDelete, false},
		{RoleAdmin, ActionDelete, true},
		{RoleAdmin, ActionManageMembers, true},
		{RoleOwner, ActionDelete, true},
		{RoleOwner, Action("publish_to_moon"), true}, // wildcard
		{Role("bogus"), ActionView, false},
		{RoleViewer, Action(""), false},
	}
	for _, tt := range tests {
		if got := RoleHasPermission(tt.role, tt.action); got != tt.want {
			t.Errorf("RoleHasPermission(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
		}
	}
}

func TestRolePermissions_OwnerIsWildcardSingleton(t *testing.T) {
	perms := RolePermissions(RoleOwner)
	if len(perms) != 1 || perms[0] != ActionWildcard {
		t.Fatalf("owner permissions = %v, want the wildcard singleton", perms)
	}
}

func TestRolePermissions_ReturnsCopy(t *testing.T) {
	perms := RolePermissions(RoleViewer)
	if len(perms) == 0 {
		t.Fatal("viewer permission set should not be empty")
	}
	perms[0] = Action("mutated")
	if RoleHasPermission(RoleViewer, Action("mutated")) {
		t.Fatal("mutating the returned slice should not affect the table")
	}
}

func TestRolePermissions_UnknownRoleEmpty(t *testing.T) {
	if perms := RolePermissions(Role("bogus")); len(perms) != 0 {
		t.Fatalf("unknown role permissions = %v, want empty", perms)
	}
}
