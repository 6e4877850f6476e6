package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// ApprovalService runs the two-step off-site checkout workflow: a verified
// adult files a request with a signed attestation, and an authorized role
// approves or denies it. Approval materializes the off-site checkout through
// the same append+projection unit the custody engine uses.
type ApprovalService struct {
	Store Store
	Clock func() time.Time
}

func NewApprovalService(store Store) *ApprovalService {
	return &ApprovalService{Store: store, Clock: time.Now}
}

type OffsiteRequestInput struct {
	KitCode              string
	CustodianName        string
	CustodianID          *string
	Notes                string
	ExpectedReturnDate   *time.Time
	AttestationSignature string
	AttestationAccepted  bool
	Origin               string
	Actor                custody.Actor
}

type DecideInput struct {
	RequestID    string
	Approve      bool
	DenialReason string
	Actor        custody.Actor
}

// CreateOffsiteRequest files a pending approval request. The kit itself is
// not mutated; availability is reserved only by the one-pending-per-kit
// invariant.
func (s *ApprovalService) CreateOffsiteRequest(ctx context.Context, in OffsiteRequestInput) (custody.ApprovalRequest, error) {
	if !in.Actor.VerifiedAdult {
		return custody.ApprovalRequest{}, custody.ErrForbidden
	}
	if !in.AttestationAccepted || in.AttestationSignature == "" {
		return custody.ApprovalRequest{}, custody.ErrInvalidInput
	}
	if in.CustodianName == "" {
		return custody.ApprovalRequest{}, custody.ErrInvalidInput
	}
	var request custody.ApprovalRequest
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		kit, err := r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusAvailable {
			return custody.ErrInvalidState
		}
		pending, err := r.Approvals.HasPending(ctx, kit.ID)
		if err != nil {
			return err
		}
		if pending {
			return custody.ErrConflict
		}
		now := s.Clock()
		request, err = r.Approvals.Create(ctx, custody.ApprovalRequest{
			KitID:              kit.ID,
			RequesterID:        in.Actor.ID,
			RequesterName:      in.Actor.Name,
			CustodianID:        in.CustodianID,
			CustodianName:      in.CustodianName,
			Status:             custody.ApprovalPending,
			Notes:              in.Notes,
			ExpectedReturnDate: in.ExpectedReturnDate,
			Attestation: custody.Attestation{
				Text:      custody.AttestationText,
				Signature: in.AttestationSignature,
				SignedAt:  now,
				Origin:    in.Origin,
			},
			CreatedAt: now,
		})
		return err
	})
	if err != nil {
		return custody.ApprovalRequest{}, err
	}
	return request, nil
}

// Decide transitions a pending request to approved or denied. On approval the
// kit's availability is re-checked under lock; the off-site checkout event
// and the kit projection update commit atomically with the decision.
func (s *ApprovalService) Decide(ctx context.Context, in DecideInput) (custody.ApprovalRequest, *custody.CustodyEvent, *custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpApprovalDecide); err != nil {
		return custody.ApprovalRequest{}, nil, nil, err
	}
	if !in.Approve && in.DenialReason == "" {
		return custody.ApprovalRequest{}, nil, nil, custody.ErrInvalidInput
	}
	var (
		request custody.ApprovalRequest
		event   *custody.CustodyEvent
		kit     *custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		request, err = r.Approvals.GetForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if request.Status != custody.ApprovalPending {
			return custody.ErrConflict
		}
		now := s.Clock()
		request.ApproverID = actorID(in.Actor)
		request.ApproverName = in.Actor.Name
		request.ApproverRole = in.Actor.Role
		request.DecidedAt = &now

		if !in.Approve {
			request.Status = custody.ApprovalDenied
			request.DenialReason = in.DenialReason
			request, err = r.Approvals.MarkDecided(ctx, request)
			return err
		}

		locked, err := r.Kits.GetByIDForUpdate(ctx, request.KitID)
		if err != nil {
			return err
		}
		if locked.Status != custody.StatusAvailable {
			return custody.ErrInvalidState
		}
		request.Status = custody.ApprovalApproved
		request, err = r.Approvals.MarkDecided(ctx, request)
		if err != nil {
			return err
		}

		attestation := request.Attestation
		appended, err := r.Events.Append(ctx, custody.CustodyEvent{
			KitID:              locked.ID,
			EventType:          custody.EventCheckoutOffsite,
			ActorID:            stringPtr(request.RequesterID),
			ActorName:          request.RequesterName,
			CustodianID:        request.CustodianID,
			CustodianName:      request.CustodianName,
			ApprovedByID:       actorID(in.Actor),
			ApprovedByName:     in.Actor.Name,
			Location:           custody.LocationOffSite,
			Notes:              decisionNotes(in.Actor, request.Notes),
			ExpectedReturnDate: request.ExpectedReturnDate,
			Attestation:        &attestation,
			CreatedAt:          now,
		})
		if err != nil {
			return err
		}
		event = &appended

		locked.Status = custody.StatusCheckedOut
		locked.CustodianID = request.CustodianID
		locked.CustodianName = request.CustodianName
		locked, err = r.Kits.UpdateProjection(ctx, locked)
		if err != nil {
			return err
		}
		kit = &locked
		return nil
	})
	if err != nil {
		return custody.ApprovalRequest{}, nil, nil, err
	}
	return request, event, kit, nil
}

// ListPending returns all pending requests, newest first.
func (s *ApprovalService) ListPending(ctx context.Context, actor custody.Actor) ([]custody.ApprovalRequest, error) {
	if err := custody.Authorize(actor, custody.OpApprovalList); err != nil {
		return nil, err
	}
	return s.Store.Repos().Approvals.ListPending(ctx)
}

func decisionNotes(approver custody.Actor, requestNotes string) string {
	note := fmt.Sprintf("Approved by %s (%s).", approver.Name, approver.Role)
	if requestNotes != "" {
		note += " " + requestNotes
	}
	return note
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
