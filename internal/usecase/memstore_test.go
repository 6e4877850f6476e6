package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// memStore is an in-memory Store for service tests. WithinTx snapshots state
// before running fn and restores it on error, matching transactional
// rollback.
type memStore struct {
	kits        map[string]custody.Kit
	events      []custody.CustodyEvent
	approvals   map[string]custody.ApprovalRequest
	maintenance map[string]custody.MaintenanceEvent
	items       map[string]custody.Item
}

func newMemStore() *memStore {
	return &memStore{
		kits:        make(map[string]custody.Kit),
		approvals:   make(map[string]custody.ApprovalRequest),
		maintenance: make(map[string]custody.MaintenanceEvent),
		items:       make(map[string]custody.Item),
	}
}

func (s *memStore) Repos() Repos {
	return Repos{
		Kits:        &memKits{s},
		Events:      &memEvents{s},
		Approvals:   &memApprovals{s},
		Maintenance: &memMaintenance{s},
		Items:       &memItems{s},
	}
}

func (s *memStore) WithinTx(_ context.Context, fn func(Repos) error) error {
	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, kit := range s.kits {
		snap.kits[id] = kit
	}
	snap.events = append([]custody.CustodyEvent(nil), s.events...)
	for id, request := range s.approvals {
		snap.approvals[id] = request
	}
	for id, event := range s.maintenance {
		snap.maintenance[id] = event
	}
	for id, item := range s.items {
		snap.items[id] = item
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.kits = snap.kits
	s.events = snap.events
	s.approvals = snap.approvals
	s.maintenance = snap.maintenance
	s.items = snap.items
}

type memKits struct{ s *memStore }

func (r *memKits) Create(_ context.Context, kit custody.Kit) (custody.Kit, error) {
	for _, existing := range r.s.kits {
		if existing.Code == kit.Code {
			return custody.Kit{}, custody.ErrConflict
		}
	}
	kit.ID = uuid.NewString()
	if kit.UpdatedAt.IsZero() {
		kit.UpdatedAt = kit.CreatedAt
	}
	r.s.kits[kit.ID] = kit
	return kit, nil
}

func (r *memKits) GetByID(_ context.Context, id string) (custody.Kit, error) {
	kit, ok := r.s.kits[id]
	if !ok {
		return custody.Kit{}, custody.ErrNotFound
	}
	return kit, nil
}

func (r *memKits) GetByCode(_ context.Context, code string) (custody.Kit, error) {
	for _, kit := range r.s.kits {
		if kit.Code == code {
			return kit, nil
		}
	}
	return custody.Kit{}, custody.ErrNotFound
}

func (r *memKits) GetByCodeForUpdate(ctx context.Context, code string) (custody.Kit, error) {
	return r.GetByCode(ctx, code)
}

func (r *memKits) GetByIDForUpdate(ctx context.Context, id string) (custody.Kit, error) {
	return r.GetByID(ctx, id)
}

func (r *memKits) UpdateProjection(_ context.Context, kit custody.Kit) (custody.Kit, error) {
	if _, ok := r.s.kits[kit.ID]; !ok {
		return custody.Kit{}, custody.ErrNotFound
	}
	kit.UpdatedAt = time.Now()
	r.s.kits[kit.ID] = kit
	return kit, nil
}

func (r *memKits) ListByStatus(_ context.Context, status custody.KitStatus) ([]custody.Kit, error) {
	var out []custody.Kit
	for _, kit := range r.s.kits {
		if kit.Status == status {
			out = append(out, kit)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *memKits) List(_ context.Context, status custody.KitStatus, offset, limit int) ([]custody.Kit, int, error) {
	var out []custody.Kit
	for _, kit := range r.s.kits {
		if status != "" && kit.Status != status {
			continue
		}
		out = append(out, kit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	total := len(out)
	if offset > 0 {
		if offset >= len(out) {
			out = nil
		} else {
			out = out[offset:]
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type memEvents struct{ s *memStore }

func (r *memEvents) Append(_ context.Context, event custody.CustodyEvent) (custody.CustodyEvent, error) {
	event.ID = uuid.NewString()
	r.s.events = append(r.s.events, event)
	return event, nil
}

func (r *memEvents) LatestCheckout(_ context.Context, kitID string) (*custody.CustodyEvent, error) {
	var latest *custody.CustodyEvent
	for i := range r.s.events {
		ev := r.s.events[i]
		if ev.KitID != kitID {
			continue
		}
		if ev.EventType != custody.EventCheckoutOnPrem && ev.EventType != custody.EventCheckoutOffsite {
			continue
		}
		if latest == nil || ev.CreatedAt.After(latest.CreatedAt) {
			copied := ev
			latest = &copied
		}
	}
	return latest, nil
}

func (r *memEvents) ListByKit(_ context.Context, kitID string) ([]custody.CustodyEvent, error) {
	var out []custody.CustodyEvent
	for _, ev := range r.s.events {
		if ev.KitID == kitID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memEvents) ListTimeline(_ context.Context, filter TimelineFilter) ([]custody.CustodyEvent, int, error) {
	var matched []custody.CustodyEvent
	for _, ev := range r.s.events {
		if filter.SubjectID != "" {
			switch filter.Scope {
			case ScopeUser:
				actorMatch := ev.ActorID != nil && *ev.ActorID == filter.SubjectID
				custodianMatch := ev.CustodianID != nil && *ev.CustodianID == filter.SubjectID
				if !actorMatch && !custodianMatch {
					continue
				}
			default:
				if ev.KitID != filter.SubjectID {
					continue
				}
			}
		}
		if filter.EventType != "" && ev.EventType != filter.EventType {
			continue
		}
		if filter.Start != nil && ev.CreatedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && ev.CreatedAt.After(*filter.End) {
			continue
		}
		matched = append(matched, ev)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if filter.SortAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

type memApprovals struct{ s *memStore }

func (r *memApprovals) Create(_ context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error) {
	for _, existing := range r.s.approvals {
		if existing.KitID == request.KitID && existing.Status == custody.ApprovalPending {
			return custody.ApprovalRequest{}, custody.ErrConflict
		}
	}
	request.ID = uuid.NewString()
	r.s.approvals[request.ID] = request
	return request, nil
}

func (r *memApprovals) GetForUpdate(_ context.Context, id string) (custody.ApprovalRequest, error) {
	request, ok := r.s.approvals[id]
	if !ok {
		return custody.ApprovalRequest{}, custody.ErrNotFound
	}
	return request, nil
}

func (r *memApprovals) HasPending(_ context.Context, kitID string) (bool, error) {
	for _, request := range r.s.approvals {
		if request.KitID == kitID && request.Status == custody.ApprovalPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memApprovals) MarkDecided(_ context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error) {
	existing, ok := r.s.approvals[request.ID]
	if !ok || existing.Status != custody.ApprovalPending {
		return custody.ApprovalRequest{}, custody.ErrConflict
	}
	r.s.approvals[request.ID] = request
	return request, nil
}

func (r *memApprovals) ListPending(_ context.Context) ([]custody.ApprovalRequest, error) {
	var out []custody.ApprovalRequest
	for _, request := range r.s.approvals {
		if request.Status == custody.ApprovalPending {
			out = append(out, request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memMaintenance struct{ s *memStore }

func (r *memMaintenance) Open(_ context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error) {
	for _, existing := range r.s.maintenance {
		if existing.KitID == event.KitID && existing.Open {
			return custody.MaintenanceEvent{}, custody.ErrConflict
		}
	}
	event.ID = uuid.NewString()
	event.Open = true
	r.s.maintenance[event.ID] = event
	return event, nil
}

func (r *memMaintenance) GetOpenForUpdate(_ context.Context, kitID string) (custody.MaintenanceEvent, error) {
	for _, event := range r.s.maintenance {
		if event.KitID == kitID && event.Open {
			return event, nil
		}
	}
	return custody.MaintenanceEvent{}, custody.ErrNotFound
}

func (r *memMaintenance) Close(_ context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error) {
	existing, ok := r.s.maintenance[event.ID]
	if !ok || !existing.Open {
		return custody.MaintenanceEvent{}, custody.ErrConflict
	}
	event.Open = false
	r.s.maintenance[event.ID] = event
	return event, nil
}

func (r *memMaintenance) ListByKit(_ context.Context, kitID string) ([]custody.MaintenanceEvent, error) {
	var out []custody.MaintenanceEvent
	for _, event := range r.s.maintenance {
		if event.KitID == kitID {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memItems struct{ s *memStore }

func (r *memItems) Create(_ context.Context, item custody.Item) (custody.Item, error) {
	item.ID = uuid.NewString()
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	r.s.items[item.ID] = item
	return item, nil
}

func (r *memItems) GetByID(_ context.Context, id string) (custody.Item, error) {
	item, ok := r.s.items[id]
	if !ok {
		return custody.Item{}, custody.ErrNotFound
	}
	return item, nil
}

func (r *memItems) GetByIDForUpdate(ctx context.Context, id string) (custody.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *memItems) Update(_ context.Context, item custody.Item) (custody.Item, error) {
	if _, ok := r.s.items[item.ID]; !ok {
		return custody.Item{}, custody.ErrNotFound
	}
	item.UpdatedAt = time.Now()
	r.s.items[item.ID] = item
	return item, nil
}

func (r *memItems) Delete(_ context.Context, id string) error {
	if _, ok := r.s.items[id]; !ok {
		return custody.ErrNotFound
	}
	delete(r.s.items, id)
	return nil
}

func (r *memItems) List(_ context.Context, filter ItemListFilter) ([]custody.Item, int, error) {
	var out []custody.Item
	for _, item := range r.s.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Type != "" && item.Type != filter.Type {
			continue
		}
		if filter.Assigned != nil && *filter.Assigned != (item.KitID != nil) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	total := len(out)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = nil
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (r *memItems) ListByKit(_ context.Context, kitID string) ([]custody.Item, error) {
	var out []custody.Item
	for _, item := range r.s.items {
		if item.KitID != nil && *item.KitID == kitID {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// seedKit inserts an available kit directly and returns it.
func (s *memStore) seedKit(code string) custody.Kit {
	kit := custody.Kit{
		ID:        uuid.NewString(),
		Code:      code,
		Name:      "Kit " + code,
		Status:    custody.StatusAvailable,
		CreatedAt: time.Now().Add(-24 * time.Hour),
		UpdatedAt: time.Now().Add(-24 * time.Hour),
	}
	s.kits[kit.ID] = kit
	return kit
}
