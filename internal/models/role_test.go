package models

import "testing"

func TestRolePrivilegeOrder(t *testing.T) {
	ordered := []Role{RoleUser, RoleSeller, RoleAdmin, RoleSuperAdmin}

	for i, lower := range ordered {
		for j, higher := range ordered {
			got := higher.AtLeast(lower)
			want := j >= i
			if got != want {
				t.Fatalf("%s.AtLeast(%s) = %v, want %v", higher, lower, got, want)
			}
		}
	}
}

func TestRoleAtLeastUnknownRole(t *testing.T) {
	if Role("moderator").AtLeast(RoleUser) {
		t.Fatal("unknown role must not satisfy any requirement")
	}
	if RoleSuperAdmin.AtLeast(Role("moderator")) {
		t.Fatal("requirement on an unknown role must never be satisfied")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleSeller, RoleAdmin, RoleSuperAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	if Role("").Valid() {
		t.Fatal("empty role must be invalid")
	}
}

func TestIsApprovedSeller(t *testing.T) {
	u := User{Role: RoleSeller}
	if u.IsApprovedSeller() {
		t.Fatal("seller without sellerInfo must not be approved")
	}

	u.SellerInfo = &SellerInfo{Approved: false}
	if u.IsApprovedSeller() {
		t.Fatal("unapproved sellerInfo must not pass")
	}

	u.SellerInfo.Approved = true
	if !u.IsApprovedSeller() {
		t.Fatal("approved seller expected to pass")
	}

	u.Role = RoleUser
	if u.IsApprovedSeller() {
		t.Fatal("approved sellerInfo without seller role must not pass")
	}
}
