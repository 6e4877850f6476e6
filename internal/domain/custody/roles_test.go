package custody

import (
	"errors"
	"testing"
)

func TestPermissions(t *testing.T) {
	tests := []struct {
		op      Operation
		allowed []Role
		denied  []Role
	}{
		{OpCheckoutOnPrem, []Role{RoleCoach, RoleArmorer, RoleAdmin}, []Role{RoleParent}},
		{OpCheckin, []Role{RoleCoach, RoleArmorer, RoleAdmin}, []Role{RoleParent}},
		{OpTransfer, []Role{RoleCoach, RoleArmorer, RoleAdmin}, []Role{RoleParent}},
		{OpReportLost, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpReportFound, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpApprovalDecide, []Role{RoleCoach, RoleArmorer, RoleAdmin}, []Role{RoleParent}},
		{OpApprovalList, []Role{RoleCoach, RoleArmorer, RoleAdmin}, []Role{RoleParent}},
		{OpMaintenanceOpen, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpMaintenanceClose, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpKitCreate, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpItemManage, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
		{OpEventExport, []Role{RoleArmorer, RoleAdmin}, []Role{RoleParent, RoleCoach}},
	}
	for _, tt := range tests {
		for _, role := range tt.allowed {
			if !Allowed(role, tt.op) {
				t.Errorf("%s must allow %s", tt.op, role)
			}
		}
		for _, role := range tt.denied {
			if Allowed(role, tt.op) {
				t.Errorf("%s must deny %s", tt.op, role)
			}
		}
	}
}

func TestAuthorize(t *testing.T) {
	err := Authorize(Actor{Role: RoleParent}, OpCheckoutOnPrem)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Authorize(Actor{Role: RoleAdmin}, OpCheckoutOnPrem); err != nil {
		t.Fatalf("admin checkout: %v", err)
	}
}

func TestUnknownRoleDeniedEverywhere(t *testing.T) {
	ops := []Operation{
		OpCheckoutOnPrem, OpCheckin, OpTransfer, OpReportLost, OpReportFound,
		OpApprovalDecide, OpApprovalList, OpMaintenanceOpen, OpMaintenanceClose,
		OpKitCreate, OpItemManage, OpEventExport,
	}
	for _, op := range ops {
		if Allowed(Role("visitor"), op) {
			t.Errorf("%s must deny unknown roles", op)
		}
	}
}
