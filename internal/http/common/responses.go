package common

import (
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

type KitResponse struct {
	ID                  string  `json:"id"`
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	Description         string  `json:"description,omitempty"`
	SerialNumber        string  `json:"serial_number,omitempty"`
	Status              string  `json:"status"`
	CustodianID         *string `json:"custodian_id,omitempty"`
	CustodianName       string  `json:"custodian_name,omitempty"`
	NextMaintenanceDate *string `json:"next_maintenance_date,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type EventResponse struct {
	ID                 string  `json:"id"`
	KitID              string  `json:"kit_id"`
	EventType          string  `json:"event_type"`
	Location           string  `json:"location"`
	ActorID            *string `json:"actor_id,omitempty"`
	ActorName          string  `json:"actor_name,omitempty"`
	CustodianID        *string `json:"custodian_id,omitempty"`
	CustodianName      string  `json:"custodian_name,omitempty"`
	ApprovedByID       *string `json:"approved_by_id,omitempty"`
	ApprovedByName     string  `json:"approved_by_name,omitempty"`
	ExpectedReturnDate *string `json:"expected_return_date,omitempty"`
	Attested           bool    `json:"attested"`
	Notes              string  `json:"notes,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

type ApprovalResponse struct {
	ID                  string  `json:"id"`
	KitID               string  `json:"kit_id"`
	RequesterID         string  `json:"requester_id"`
	RequesterName       string  `json:"requester_name"`
	CustodianID         *string `json:"custodian_id,omitempty"`
	CustodianName       string  `json:"custodian_name"`
	Status              string  `json:"status"`
	ApproverID          *string `json:"approver_id,omitempty"`
	ApproverName        string  `json:"approver_name,omitempty"`
	ApproverRole        string  `json:"approver_role,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	DenialReason        string  `json:"denial_reason,omitempty"`
	ExpectedReturnDate  *string `json:"expected_return_date,omitempty"`
	AttestationSignedAt string  `json:"attestation_signed_at"`
	CreatedAt           string  `json:"created_at"`
	DecidedAt           *string `json:"decided_at,omitempty"`
}

type MaintenanceResponse struct {
	ID                  string  `json:"id"`
	KitID               string  `json:"kit_id"`
	OpenedByID          string  `json:"opened_by_id"`
	OpenedByName        string  `json:"opened_by_name"`
	ClosedByID          *string `json:"closed_by_id,omitempty"`
	ClosedByName        string  `json:"closed_by_name,omitempty"`
	Notes               string  `json:"notes,omitempty"`
	PartsReplaced       string  `json:"parts_replaced,omitempty"`
	RoundCount          *int    `json:"round_count,omitempty"`
	Open                bool    `json:"open"`
	NextMaintenanceDate *string `json:"next_maintenance_date,omitempty"`
	CreatedAt           string  `json:"created_at"`
	ClosedAt            *string `json:"closed_at,omitempty"`
}

type ItemResponse struct {
	ID           string  `json:"id"`
	KitID        *string `json:"kit_id,omitempty"`
	ItemType     string  `json:"item_type"`
	Make         string  `json:"make,omitempty"`
	Model        string  `json:"model,omitempty"`
	SerialNumber string  `json:"serial_number,omitempty"`
	FriendlyName string  `json:"friendly_name,omitempty"`
	PhotoURL     string  `json:"photo_url,omitempty"`
	Quantity     int     `json:"quantity"`
	Status       string  `json:"status"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func ToItemResponse(item custody.Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		KitID:        item.KitID,
		ItemType:     string(item.Type),
		Make:         item.Make,
		Model:        item.Model,
		SerialNumber: item.SerialNumber,
		FriendlyName: item.FriendlyName,
		PhotoURL:     item.PhotoURL,
		Quantity:     item.Quantity,
		Status:       string(item.Status),
		Notes:        item.Notes,
		CreatedAt:    formatTime(item.CreatedAt),
		UpdatedAt:    formatTime(item.UpdatedAt),
	}
}

func ToKitResponse(kit custody.Kit) KitResponse {
	return KitResponse{
		ID:                  kit.ID,
		Code:                kit.Code,
		Name:                kit.Name,
		Description:         kit.Description,
		SerialNumber:        kit.SerialNumber,
		Status:              string(kit.Status),
		CustodianID:         kit.CustodianID,
		CustodianName:       kit.CustodianName,
		NextMaintenanceDate: formatDate(kit.NextMaintenanceDate),
		CreatedAt:           formatTime(kit.CreatedAt),
		UpdatedAt:           formatTime(kit.UpdatedAt),
	}
}

func ToEventResponse(event custody.CustodyEvent) EventResponse {
	return EventResponse{
		ID:                 event.ID,
		KitID:              event.KitID,
		EventType:          string(event.EventType),
		Location:           string(event.Location),
		ActorID:            event.ActorID,
		ActorName:          event.ActorName,
		CustodianID:        event.CustodianID,
		CustodianName:      event.CustodianName,
		ApprovedByID:       event.ApprovedByID,
		ApprovedByName:     event.ApprovedByName,
		ExpectedReturnDate: formatDate(event.ExpectedReturnDate),
		Attested:           event.Attestation != nil,
		Notes:              event.Notes,
		CreatedAt:          formatTime(event.CreatedAt),
	}
}

func ToApprovalResponse(request custody.ApprovalRequest) ApprovalResponse {
	return ApprovalResponse{
		ID:                  request.ID,
		KitID:               request.KitID,
		RequesterID:         request.RequesterID,
		RequesterName:       request.RequesterName,
		CustodianID:         request.CustodianID,
		CustodianName:       request.CustodianName,
		Status:              string(request.Status),
		ApproverID:          request.ApproverID,
		ApproverName:        request.ApproverName,
		ApproverRole:        string(request.ApproverRole),
		Notes:               request.Notes,
		DenialReason:        request.DenialReason,
		ExpectedReturnDate:  formatDate(request.ExpectedReturnDate),
		AttestationSignedAt: formatTime(request.Attestation.SignedAt),
		CreatedAt:           formatTime(request.CreatedAt),
		DecidedAt:           formatTimePtr(request.DecidedAt),
	}
}

func ToMaintenanceResponse(event custody.MaintenanceEvent) MaintenanceResponse {
	return MaintenanceResponse{
		ID:                  event.ID,
		KitID:               event.KitID,
		OpenedByID:          event.OpenedByID,
		OpenedByName:        event.OpenedByName,
		ClosedByID:          event.ClosedByID,
		ClosedByName:        event.ClosedByName,
		Notes:               event.Notes,
		PartsReplaced:       event.PartsReplaced,
		RoundCount:          event.RoundCount,
		Open:                event.Open,
		NextMaintenanceDate: formatDate(event.NextMaintenanceDate),
		CreatedAt:           formatTime(event.CreatedAt),
		ClosedAt:            formatTimePtr(event.ClosedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := formatTime(*t)
	return &formatted
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format("2006-01-02")
	return &formatted
}
