package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// MaintenanceService opens and closes maintenance windows, temporarily
// removing a kit from circulation.
type MaintenanceService struct {
	Store Store
	Clock func() time.Time
}

func NewMaintenanceService(store Store) *MaintenanceService {
	return &MaintenanceService{Store: store, Clock: time.Now}
}

type MaintenanceInput struct {
	KitCode             string
	Notes               string
	PartsReplaced       string
	RoundCount          *int
	NextMaintenanceDate *time.Time
	Actor               custody.Actor
}

// Open creates a maintenance window and sets the kit to in_maintenance.
func (s *MaintenanceService) Open(ctx context.Context, in MaintenanceInput) (custody.MaintenanceEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpMaintenanceOpen); err != nil {
		return custody.MaintenanceEvent{}, custody.Kit{}, err
	}
	var (
		event custody.MaintenanceEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status == custody.StatusInMaintenance {
			return custody.ErrInvalidState
		}
		event, err = r.Maintenance.Open(ctx, custody.MaintenanceEvent{
			KitID:         kit.ID,
			OpenedByID:    in.Actor.ID,
			OpenedByName:  in.Actor.Name,
			Notes:         in.Notes,
			PartsReplaced: in.PartsReplaced,
			RoundCount:    in.RoundCount,
			Open:          true,
			CreatedAt:     s.Clock(),
		})
		if err != nil {
			return err
		}
		kit.Status = custody.StatusInMaintenance
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.MaintenanceEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

// Close completes the open maintenance window for a kit. The same row is
// mutated: close notes and parts are appended to what was recorded at open,
// and the kit returns to available with no custodian.
func (s *MaintenanceService) Close(ctx context.Context, in MaintenanceInput) (custody.MaintenanceEvent, custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpMaintenanceClose); err != nil {
		return custody.MaintenanceEvent{}, custody.Kit{}, err
	}
	var (
		event custody.MaintenanceEvent
		kit   custody.Kit
	)
	err := s.Store.WithinTx(ctx, func(r Repos) error {
		var err error
		kit, err = r.Kits.GetByCodeForUpdate(ctx, in.KitCode)
		if err != nil {
			return err
		}
		if kit.Status != custody.StatusInMaintenance {
			return custody.ErrInvalidState
		}
		event, err = r.Maintenance.GetOpenForUpdate(ctx, kit.ID)
		if err != nil {
			// Status says in_maintenance, so a missing open row is an
			// internal invariant violation, not a caller error.
			if errors.Is(err, custody.ErrNotFound) {
				return custody.ErrInconsistent
			}
			return err
		}
		now := s.Clock()
		event.ClosedByID = stringPtr(in.Actor.ID)
		event.ClosedByName = in.Actor.Name
		event.Open = false
		event.ClosedAt = &now
		event.Notes = appendSection(event.Notes, "Close Notes: ", in.Notes)
		event.PartsReplaced = appendSection(event.PartsReplaced, "", in.PartsReplaced)
		if in.RoundCount != nil {
			event.RoundCount = in.RoundCount
		}
		if in.NextMaintenanceDate != nil {
			event.NextMaintenanceDate = in.NextMaintenanceDate
		}
		event, err = r.Maintenance.Close(ctx, event)
		if err != nil {
			return err
		}
		kit.Status = custody.StatusAvailable
		kit.CustodianID = nil
		kit.CustodianName = ""
		if in.NextMaintenanceDate != nil {
			kit.NextMaintenanceDate = in.NextMaintenanceDate
		}
		kit, err = r.Kits.UpdateProjection(ctx, kit)
		return err
	})
	if err != nil {
		return custody.MaintenanceEvent{}, custody.Kit{}, err
	}
	return event, kit, nil
}

func appendSection(existing, label, addition string) string {
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + "\n\n" + label + addition
}
