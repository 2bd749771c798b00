package models

import "testing"

func TestUserRoleRoundTrip(t *testing.T) {
	user := &User{UserName: "alice"}

	if err := user.SetRoles([]Role{RoleStudent, RoleReviewer, RoleStudent}); err != nil {
		t.Fatalf("SetRoles: %v", err)
	}

	roles := user.RoleSet()
	if len(roles) != 2 {
		t.Fatalf("roles = %v, want deduplicated pair", roles)
	}
	if !user.HasRole(RoleReviewer) {
		t.Error("reviewer role missing after SetRoles")
	}
	if user.HasRole(RoleAdmin) {
		t.Error("admin role present without being granted")
	}
}

func TestInvitationCodeRoleRoundTrip(t *testing.T) {
	invite := &InvitationCode{Code: "AB12CD34"}

	if err := invite.SetRoles([]Role{RoleStaff, RoleInstructor, RoleStaff}); err != nil {
		t.Fatalf("SetRoles: %v", err)
	}

	roles := invite.RoleSet()
	if len(roles) != 2 {
		t.Fatalf("roles = %v, want deduplicated pair", roles)
	}
	if roles[0] != RoleStaff || roles[1] != RoleInstructor {
		t.Errorf("roles = %v, want staff then instructor", roles)
	}
}

func TestInvitationCodeEmptyRoles(t *testing.T) {
	invite := &InvitationCode{}
	if roles := invite.RoleSet(); len(roles) != 0 {
		t.Errorf("roles = %v, want none", roles)
	}
}
