package usecase

import (
	"context"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

type KitRepository interface {
	Create(ctx context.Context, kit custody.Kit) (custody.Kit, error)
	GetByID(ctx context.Context, id string) (custody.Kit, error)
	GetByCode(ctx context.Context, code string) (custody.Kit, error)
	// GetByCodeForUpdate locks the kit row for the duration of the enclosing
	// transaction. Engines use it for every validate-then-write sequence.
	GetByCodeForUpdate(ctx context.Context, code string) (custody.Kit, error)
	GetByIDForUpdate(ctx context.Context, id string) (custody.Kit, error)
	// UpdateProjection rewrites the kit's denormalized current-state fields.
	// It is the only kit mutator and is always called in the same transaction
	// as the ledger append that justifies it.
	UpdateProjection(ctx context.Context, kit custody.Kit) (custody.Kit, error)
	ListByStatus(ctx context.Context, status custody.KitStatus) ([]custody.Kit, error)
	// List pages through kits ordered by code. An empty status matches all.
	List(ctx context.Context, status custody.KitStatus, offset, limit int) ([]custody.Kit, int, error)
}

// EventRepository is the append-only custody ledger. It exposes no update or
// delete operation.
type EventRepository interface {
	Append(ctx context.Context, event custody.CustodyEvent) (custody.CustodyEvent, error)
	// LatestCheckout returns the most recent checkout-class event for a kit,
	// or nil when the kit has never been checked out.
	LatestCheckout(ctx context.Context, kitID string) (*custody.CustodyEvent, error)
	ListByKit(ctx context.Context, kitID string) ([]custody.CustodyEvent, error)
	ListTimeline(ctx context.Context, filter TimelineFilter) ([]custody.CustodyEvent, int, error)
}

type ApprovalRepository interface {
	Create(ctx context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error)
	GetForUpdate(ctx context.Context, id string) (custody.ApprovalRequest, error)
	HasPending(ctx context.Context, kitID string) (bool, error)
	// MarkDecided records the single pending->terminal transition.
	MarkDecided(ctx context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error)
	ListPending(ctx context.Context) ([]custody.ApprovalRequest, error)
}

type MaintenanceRepository interface {
	Open(ctx context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error)
	GetOpenForUpdate(ctx context.Context, kitID string) (custody.MaintenanceEvent, error)
	// Close mutates the open row in place; open->closed is the row's only
	// permitted transition.
	Close(ctx context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error)
	ListByKit(ctx context.Context, kitID string) ([]custody.MaintenanceEvent, error)
}

// ItemListFilter narrows a master inventory listing. Assigned filters on kit
// assignment when set; nil means both assigned and unassigned items.
type ItemListFilter struct {
	Status   custody.ItemStatus
	Type     custody.ItemType
	Assigned *bool
	Offset   int
	Limit    int
}

type ItemRepository interface {
	Create(ctx context.Context, item custody.Item) (custody.Item, error)
	GetByID(ctx context.Context, id string) (custody.Item, error)
	GetByIDForUpdate(ctx context.Context, id string) (custody.Item, error)
	Update(ctx context.Context, item custody.Item) (custody.Item, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ItemListFilter) ([]custody.Item, int, error)
	ListByKit(ctx context.Context, kitID string) ([]custody.Item, error)
}

// Repos bundles the repositories visible to one unit of work.
type Repos struct {
	Kits        KitRepository
	Events      EventRepository
	Approvals   ApprovalRepository
	Maintenance MaintenanceRepository
	Items       ItemRepository
}

// Store provides repository access, plain or transactional. WithinTx runs fn
// against repositories bound to a single transaction; any error rolls the
// whole unit back, so an event append and its projection rewrite land
// together or not at all.
type Store interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// TimelineScope selects whose timeline is being read.
type TimelineScope string

const (
	ScopeKit  TimelineScope = "kit"
	ScopeUser TimelineScope = "user"
)

// TimelineFilter selects ledger events. An empty SubjectID matches the whole
// ledger regardless of scope; audit exports use that to pull every event.
type TimelineFilter struct {
	Scope     TimelineScope
	SubjectID string
	EventType custody.EventType
	Start     *time.Time
	End       *time.Time
	SortAsc   bool
	Offset    int
	Limit     int
}
