package usecase

import (
	"context"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// KitService covers kit administration and the read paths: lookup, warnings,
// and the audit timeline. Warnings are always recomputed from the ledger,
// never cached on the kit row.
type KitService struct {
	Store               Store
	Clock               func() time.Time
	ExtendedCustodyDays int
}

func NewKitService(store Store, extendedCustodyDays int) *KitService {
	return &KitService{
		Store:               store,
		Clock:               time.Now,
		ExtendedCustodyDays: extendedCustodyDays,
	}
}

type CreateKitInput struct {
	Code         string
	Name         string
	Description  string
	SerialNumber string
	Actor        custody.Actor
}

// KitWithWarnings pairs a kit projection with its freshly computed warnings.
type KitWithWarnings struct {
	Kit      custody.Kit
	Warnings custody.WarningSet
}

// CreateKit registers a new kit. The serial number is encrypted by the store
// before it is persisted.
func (s *KitService) CreateKit(ctx context.Context, in CreateKitInput) (custody.Kit, error) {
	if err := custody.Authorize(in.Actor, custody.OpKitCreate); err != nil {
		return custody.Kit{}, err
	}
	if in.Code == "" || in.Name == "" {
		return custody.Kit{}, custody.ErrInvalidInput
	}
	return s.Store.Repos().Kits.Create(ctx, custody.Kit{
		Code:         in.Code,
		Name:         in.Name,
		Description:  in.Description,
		SerialNumber: in.SerialNumber,
		Status:       custody.StatusAvailable,
		CreatedAt:    s.Clock(),
	})
}

// LookupByCode resolves a kit from a scanned or typed code.
func (s *KitService) LookupByCode(ctx context.Context, code string) (custody.Kit, error) {
	return s.Store.Repos().Kits.GetByCode(ctx, code)
}

// GetKitWithWarnings returns a kit and its advisory warnings.
func (s *KitService) GetKitWithWarnings(ctx context.Context, kitID string) (KitWithWarnings, error) {
	r := s.Store.Repos()
	kit, err := r.Kits.GetByID(ctx, kitID)
	if err != nil {
		return KitWithWarnings{}, err
	}
	latest, err := r.Events.LatestCheckout(ctx, kit.ID)
	if err != nil {
		return KitWithWarnings{}, err
	}
	return KitWithWarnings{
		Kit:      kit,
		Warnings: custody.ComputeWarnings(kit, latest, s.Clock(), s.ExtendedCustodyDays),
	}, nil
}

// ListCheckedOutWithWarnings returns every checked-out kit whose warning set
// is non-empty.
func (s *KitService) ListCheckedOutWithWarnings(ctx context.Context) ([]KitWithWarnings, error) {
	r := s.Store.Repos()
	kits, err := r.Kits.ListByStatus(ctx, custody.StatusCheckedOut)
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	var out []KitWithWarnings
	for _, kit := range kits {
		latest, err := r.Events.LatestCheckout(ctx, kit.ID)
		if err != nil {
			return nil, err
		}
		warnings := custody.ComputeWarnings(kit, latest, now, s.ExtendedCustodyDays)
		if warnings.HasWarning {
			out = append(out, KitWithWarnings{Kit: kit, Warnings: warnings})
		}
	}
	return out, nil
}

// ListKitsFilter narrows a kit listing. An empty status matches all kits.
type ListKitsFilter struct {
	Status custody.KitStatus
	Offset int
	Limit  int
}

// ListKits returns a page of kits with their warnings, plus the total match
// count.
func (s *KitService) ListKits(ctx context.Context, filter ListKitsFilter) ([]KitWithWarnings, int, error) {
	switch filter.Status {
	case "", custody.StatusAvailable, custody.StatusCheckedOut, custody.StatusInMaintenance, custody.StatusLost:
	default:
		return nil, 0, custody.ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	r := s.Store.Repos()
	kits, total, err := r.Kits.List(ctx, filter.Status, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	now := s.Clock()
	out := make([]KitWithWarnings, 0, len(kits))
	for _, kit := range kits {
		latest, err := r.Events.LatestCheckout(ctx, kit.ID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, KitWithWarnings{
			Kit:      kit,
			Warnings: custody.ComputeWarnings(kit, latest, now, s.ExtendedCustodyDays),
		})
	}
	return out, total, nil
}

// Timeline returns a page of ledger events for a kit or a user, plus the
// total match count. The subject must exist.
func (s *KitService) Timeline(ctx context.Context, filter TimelineFilter) ([]custody.CustodyEvent, int, error) {
	if filter.SubjectID == "" {
		return nil, 0, custody.ErrInvalidInput
	}
	if filter.Scope == ScopeKit {
		if _, err := s.Store.Repos().Kits.GetByID(ctx, filter.SubjectID); err != nil {
			return nil, 0, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	return s.Store.Repos().Events.ListTimeline(ctx, filter)
}
