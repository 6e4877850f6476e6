package custody

import (
	"sort"
	"time"
)

type KitStatus string

const (
	StatusAvailable     KitStatus = "available"
	StatusCheckedOut    KitStatus = "checked_out"
	StatusInMaintenance KitStatus = "in_maintenance"
	StatusLost          KitStatus = "lost"
)

type EventType string

const (
	EventCheckoutOnPrem  EventType = "checkout_onprem"
	EventCheckoutOffsite EventType = "checkout_offsite"
	EventCheckin         EventType = "checkin"
	EventTransfer        EventType = "transfer"
	EventLost            EventType = "lost"
	EventFound           EventType = "found"
)

type Location string

const (
	LocationOnPremises Location = "on_premises"
	LocationOffSite    Location = "off_site"
	LocationUnknown    Location = "unknown"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalDenied   ApprovalStatus = "denied"
)

// Attestation is the acknowledgment captured when off-site custody is
// requested. It is embedded by value in both the approval request and the
// resulting custody event and never modified after capture.
type Attestation struct {
	Text      string
	Signature string
	SignedAt  time.Time
	Origin    string
}

// Kit is the denormalized projection of a kit's current state. The custody
// ledger is the source of truth; only the engines rewrite these fields, and
// always in the same transaction as the event append.
type Kit struct {
	ID                  string
	Code                string
	Name                string
	Description         string
	SerialNumber        string
	Status              KitStatus
	CustodianID         *string
	CustodianName       string
	NextMaintenanceDate *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CustodyEvent is one immutable ledger row: at time CreatedAt, custody of
// KitID changed in manner EventType. Rows are never updated or deleted.
type CustodyEvent struct {
	ID                 string
	KitID              string
	EventType          EventType
	ActorID            *string
	ActorName          string
	CustodianID        *string
	CustodianName      string
	ApprovedByID       *string
	ApprovedByName     string
	Location           Location
	Notes              string
	ExpectedReturnDate *time.Time
	Attestation        *Attestation
	CreatedAt          time.Time
}

// ApprovalRequest gates an off-site checkout. It transitions exactly once,
// from pending to approved or denied, and is never reopened.
type ApprovalRequest struct {
	ID                 string
	KitID              string
	RequesterID        string
	RequesterName      string
	CustodianID        *string
	CustodianName      string
	Status             ApprovalStatus
	ApproverID         *string
	ApproverName       string
	ApproverRole       Role
	Notes              string
	DenialReason       string
	ExpectedReturnDate *time.Time
	Attestation        Attestation
	CreatedAt          time.Time
	DecidedAt          *time.Time
}

// MaintenanceEvent is a maintenance window. Unlike custody events the same
// row is mutated on close; that is its only mutation.
type MaintenanceEvent struct {
	ID                  string
	KitID               string
	OpenedByID          string
	OpenedByName        string
	ClosedByID          *string
	ClosedByName        string
	Notes               string
	PartsReplaced       string
	RoundCount          *int
	Open                bool
	NextMaintenanceDate *time.Time
	CreatedAt           time.Time
	ClosedAt            *time.Time
}

// AttestationText is shown to and signed by every off-site requester. The
// exact wording is part of the custody record.
const AttestationText = `RESPONSIBILITY ATTESTATION FOR OFF-SITE CUSTODY

By digitally signing below, I acknowledge and agree to the following:

1. CUSTODY RESPONSIBILITY: I accept full legal responsibility for the equipment kit
   during the period it is in my custody off-site.

2. SAFE STORAGE: I agree to store the kit in a secure location, in compliance with all
   applicable federal, state, and local laws regarding storage and safety.

3. SUPERVISION: I understand that the kit must remain under direct adult supervision at all times
   and will only be used by authorized individuals under my direct supervision.

4. TRANSPORT COMPLIANCE: I agree to transport the kit in accordance with all applicable laws
   and regulations.

5. RETURN OBLIGATION: I agree to return the kit in the same condition it was received, by the
   agreed-upon return date, or immediately upon request by the organization.

6. LIABILITY: I understand that I am solely responsible for any loss, damage, theft, or misuse
   of the kit while it is in my custody.

7. INCIDENT REPORTING: I agree to immediately report any loss, theft, damage, or safety incident
   involving the kit to the organization.

8. LEGAL COMPLIANCE: I certify that I am legally permitted to possess the equipment under
   federal, state, and local law, and that I will use the kit only in lawful activities.

I understand that failure to comply with these terms may result in immediate revocation of
custody privileges, legal action, and/or notification of law enforcement authorities.

I have read, understood, and agree to all of the above terms and conditions.`

// DeriveStatus replays a kit's full history in creation order and returns the
// status the projection should hold. Custody and maintenance events are merged
// by timestamp; the result must always match Kit.Status.
func DeriveStatus(events []CustodyEvent, maintenance []MaintenanceEvent) KitStatus {
	type step struct {
		at     time.Time
		status KitStatus
	}
	var steps []step
	for _, ev := range events {
		switch ev.EventType {
		case EventCheckoutOnPrem, EventCheckoutOffsite:
			steps = append(steps, step{ev.CreatedAt, StatusCheckedOut})
		case EventCheckin, EventFound:
			steps = append(steps, step{ev.CreatedAt, StatusAvailable})
		case EventLost:
			steps = append(steps, step{ev.CreatedAt, StatusLost})
		case EventTransfer:
			// Custodian changes, status does not.
		}
	}
	for _, me := range maintenance {
		steps = append(steps, step{me.CreatedAt, StatusInMaintenance})
		if !me.Open && me.ClosedAt != nil {
			steps = append(steps, step{*me.ClosedAt, StatusAvailable})
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].at.Before(steps[j].at) })
	status := StatusAvailable
	for _, s := range steps {
		status = s.status
	}
	return status
}
