package usecase

import (
	"context"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// CustodyService validates and executes kit state transitions. Every
// operation reads the locked kit row, appends exactly one ledger event and
// rewrites the kit projection inside a single transaction.
type CustodyService struct {
	Store Store
	Clock func() time.Time
}

func NewCustodyService(store Store) *CustodyService {
	return &CustodyService{Store: store, Clock: time.Now}
}

type CheckoutInput struct {
	KitCode            string
	CustodianName      string
	CustodianID        *string
	Notes              string
	ExpectedReturnDate *time.Time
	Actor              custody.Actor
}

type TransferInput struct {
	KitCode       string
	CustodianName string
	CustodianID   *string
	Notes         string
	Actor         custody.Actor
}

type ReportInput struct {
	KitCode string
	Notes   string
	Actor   custody.Actor
}

// CheckoutOnPrem checks an available kit out to a custodian on premises.
func (s *CustodyService) CheckoutOnPrem(ctx context.Context, in CheckoutInput) (custody.CustodyEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpCheckoutOnPrem); err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	if in.CustodianName == "" {
		return custody.CustodyEvent{}, custody.Kit{}, custody.ErrInvalidInput
	}
	var (
		event custody.CustodyEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusAvailable {
			return custody.ErrInvalidState
		}
		event, err = r.Events.Append(ctx, custody.CustodyEvent{
			KitID:              kit.ID,
			EventType:          custody.EventCheckoutOnPrem,
			ActorID:            actorID(in.Actor),
			ActorName:          in.Actor.Name,
			CustodianID:        in.CustodianID,
			CustodianName:      in.CustodianName,
			Location:           custody.LocationOnPremises,
			Notes:              in.Notes,
			ExpectedReturnDate: in.ExpectedReturnDate,
			CreatedAt:          s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.Status = custody.StatusCheckedOut
		kit.CustodianID = in.CustodianID
		kit.CustodianName = in.CustodianName
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

// Transfer moves custody of a checked-out kit to a new custodian without
// returning it first. Kit status is unchanged.
func (s *CustodyService) Transfer(ctx context.Context, in TransferInput) (custody.CustodyEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpTransfer); err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	if in.CustodianName == "" {
		return custody.CustodyEvent{}, custody.Kit{}, custody.ErrInvalidInput
	}
	var (
		event custody.CustodyEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusCheckedOut {
			return custody.ErrInvalidState
		}
		event, err = r.Events.Append(ctx, custody.CustodyEvent{
			KitID:         kit.ID,
			EventType:     custody.EventTransfer,
			ActorID:       actorID(in.Actor),
			ActorName:     in.Actor.Name,
			CustodianID:   in.CustodianID,
			CustodianName: in.CustodianName,
			Location:      custody.LocationUnknown,
			Notes:         in.Notes,
			CreatedAt:     s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.CustodianID = in.CustodianID
		kit.CustodianName = in.CustodianName
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

// CheckIn returns a checked-out kit, making it available and clearing the
// current custodian.
func (s *CustodyService) CheckIn(ctx context.Context, in ReportInput) (custody.CustodyEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpCheckin); err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	var (
		event custody.CustodyEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusCheckedOut {
			return custody.ErrInvalidState
		}
		event, err = r.Events.Append(ctx, custody.CustodyEvent{
			KitID:         kit.ID,
			EventType:     custody.EventCheckin,
			ActorID:       actorID(in.Actor),
			ActorName:     in.Actor.Name,
			CustodianName: kit.CustodianName,
			CustodianID:   kit.CustodianID,
			Location:      custody.LocationOnPremises,
			Notes:         in.Notes,
			CreatedAt:     s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.Status = custody.StatusAvailable
		kit.CustodianID = nil
		kit.CustodianName = ""
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

// ReportLost marks a kit as lost. The last known custodian is preserved on
// both the event and the kit projection.
func (s *CustodyService) ReportLost(ctx context.Context, in ReportInput) (custody.CustodyEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpReportLost); err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	var (
		event custody.CustodyEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status == custody.StatusLost {
			return custody.ErrInvalidState
		}
		event, err = r.Events.Append(ctx, custody.CustodyEvent{
			KitID:         kit.ID,
			EventType:     custody.EventLost,
			ActorID:       actorID(in.Actor),
			ActorName:     in.Actor.Name,
			CustodianID:   kit.CustodianID,
			CustodianName: kit.CustodianName,
			Location:      custody.LocationUnknown,
			Notes:         in.Notes,
			CreatedAt:     s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.Status = custody.StatusLost
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

// ReportFound returns a lost kit to circulation and clears the current
// custodian. History is left untouched.
func (s *CustodyService) ReportFound(ctx context.Context, in ReportInput) (custody.CustodyEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpReportFound); err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	var (
		event custody.CustodyEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusLost {
			return custody.ErrInvalidState
		}
		event, err = r.Events.Append(ctx, custody.CustodyEvent{
			KitID:     kit.ID,
			EventType: custody.EventFound,
			ActorID:   actorID(in.Actor),
			ActorName: in.Actor.Name,
			Location:  custody.LocationUnknown,
			Notes:     in.Notes,
			CreatedAt: s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.Status = custody.StatusAvailable
		kit.CustodianID = nil
		kit.CustodianName = ""
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.CustodyEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

func actorID(actor custody.Actor) *string {
	if actor.ID == "" {
		return nil
	}
	id := actor.ID
	return &id
}
