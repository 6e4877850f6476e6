package custody

type Role string

const (
	RoleParent  Role = "parent"
	RoleCoach   Role = "coach"
	RoleArmorer Role = "armorer"
	RoleAdmin   Role = "admin"
)

// Actor is an already-authenticated caller. Name is snapshotted onto every
// row the actor touches so the ledger stays readable if the display name
// later changes.
type Actor struct {
	ID            string
	Name          string
	Role          Role
	VerifiedAdult bool
}

// Operation identifies an engine operation for permission checks.
type Operation string

const (
	OpCheckoutOnPrem   Operation = "custody.checkout_onprem"
	OpCheckin          Operation = "custody.checkin"
	OpTransfer         Operation = "custody.transfer"
	OpReportLost       Operation = "custody.report_lost"
	OpReportFound      Operation = "custody.report_found"
	OpApprovalDecide   Operation = "approval.decide"
	OpApprovalList     Operation = "approval.list_pending"
	OpMaintenanceOpen  Operation = "maintenance.open"
	OpMaintenanceClose Operation = "maintenance.close"
	OpKitCreate        Operation = "kit.create"
	OpItemManage       Operation = "item.manage"
	OpEventExport      Operation = "event.export"
)

// permissions is the capability table: every role allowed to perform each
// operation. Operations absent from the table are open to any authenticated
// actor; off-site request creation is gated on VerifiedAdult instead of role.
var permissions = map[Operation]map[Role]bool{
	OpCheckoutOnPrem:   {RoleCoach: true, RoleArmorer: true, RoleAdmin: true},
	OpCheckin:          {RoleCoach: true, RoleArmorer: true, RoleAdmin: true},
	OpTransfer:         {RoleCoach: true, RoleArmorer: true, RoleAdmin: true},
	OpReportLost:       {RoleArmorer: true, RoleAdmin: true},
	OpReportFound:      {RoleArmorer: true, RoleAdmin: true},
	OpApprovalDecide:   {RoleArmorer: true, RoleCoach: true, RoleAdmin: true},
	OpApprovalList:     {RoleArmorer: true, RoleCoach: true, RoleAdmin: true},
	OpMaintenanceOpen:  {RoleArmorer: true, RoleAdmin: true},
	OpMaintenanceClose: {RoleArmorer: true, RoleAdmin: true},
	OpKitCreate:        {RoleAdmin: true, RoleArmorer: true},
	OpItemManage:       {RoleAdmin: true, RoleArmorer: true},
	OpEventExport:      {RoleArmorer: true, RoleAdmin: true},
}

// Allowed reports whether role may perform op.
func Allowed(role Role, op Operation) bool {
	roles, ok := permissions[op]
	if !ok {
		return true
	}
	return roles[role]
}

// Authorize returns ErrForbidden unless the actor's role permits op.
func Authorize(actor Actor, op Operation) error {
	if !Allowed(actor.Role, op) {
		return ErrForbidden
	}
	return nil
}
