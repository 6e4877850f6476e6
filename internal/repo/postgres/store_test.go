package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/J2WFFDev/custody-manager/internal/crypto"
	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/repo/postgres/testdb"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

func newTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()
	pool, cleanup := testdb.NewDatabase(t)
	t.Cleanup(cleanup)
	cipher, err := crypto.New("test-secret")
	if err != nil {
		t.Fatalf("init cipher: %v", err)
	}
	return &Store{Pool: pool, Cipher: cipher}, pool
}

func createKit(t *testing.T, store *Store, code string) custody.Kit {
	t.Helper()
	kit, err := store.Repos().Kits.Create(context.Background(), custody.Kit{
		Code:         code,
		Name:         "Kit " + code,
		SerialNumber: "SN-" + code,
		Status:       custody.StatusAvailable,
	})
	if err != nil {
		t.Fatalf("create kit: %v", err)
	}
	return kit
}

func TestKitRoundTrip(t *testing.T) {
	store, pool := newTestStore(t)
	ctx := context.Background()

	kit := createKit(t, store, "RF-001")
	if kit.ID == "" {
		t.Fatalf("kit must get an id")
	}

	got, err := store.Repos().Kits.GetByCode(ctx, "RF-001")
	if err != nil {
		t.Fatalf("get by code: %v", err)
	}
	if got.SerialNumber != "SN-RF-001" {
		t.Fatalf("serial = %q", got.SerialNumber)
	}

	// The serial is not stored in the clear.
	var stored *string
	if err := pool.QueryRow(ctx, `SELECT serial_number_encrypted FROM kits WHERE id = $1`, kit.ID).Scan(&stored); err != nil {
		t.Fatalf("read raw serial: %v", err)
	}
	if stored == nil || *stored == "SN-RF-001" {
		t.Fatalf("serial must be encrypted at rest")
	}

	if _, err := store.Repos().Kits.GetByCode(ctx, "RF-404"); !errors.Is(err, custody.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Repos().Kits.Create(ctx, custody.Kit{Code: "RF-001", Name: "Duplicate", Status: custody.StatusAvailable}); !errors.Is(err, custody.ErrConflict) {
		t.Fatalf("duplicate code: expected ErrConflict, got %v", err)
	}

	createKit(t, store, "RF-002")
	page, total, err := store.Repos().Kits.List(ctx, "", 1, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].Code != "RF-002" {
		t.Fatalf("list total = %d len = %d", total, len(page))
	}
	none, total, err := store.Repos().Kits.List(ctx, custody.StatusLost, 0, 10)
	if err != nil {
		t.Fatalf("list lost: %v", err)
	}
	if total != 0 || len(none) != 0 {
		t.Fatalf("lost total = %d len = %d", total, len(none))
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	kit := createKit(t, store, "RF-001")

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(r usecase.Repos) error {
		locked, err := r.Kits.GetByCodeForUpdate(ctx, kit.Code)
		if err != nil {
			return err
		}
		if _, err := r.Events.Append(ctx, custody.CustodyEvent{
			KitID:         locked.ID,
			EventType:     custody.EventCheckoutOnPrem,
			ActorName:     "Avery Stone",
			CustodianName: "Jordan Pruitt",
			Location:      custody.LocationOnPremises,
			CreatedAt:     time.Now(),
		}); err != nil {
			return err
		}
		locked.Status = custody.StatusCheckedOut
		if _, err := r.Kits.UpdateProjection(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected the injected error, got %v", err)
	}

	got, err := store.Repos().Kits.GetByID(ctx, kit.ID)
	if err != nil {
		t.Fatalf("get kit: %v", err)
	}
	if got.Status != custody.StatusAvailable {
		t.Fatalf("rollback must restore status, got %s", got.Status)
	}
	events, err := store.Repos().Events.ListByKit(ctx, kit.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("rollback must discard events, got %d", len(events))
	}
}

func TestEventAppendAndTimeline(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	kit := createKit(t, store, "RF-001")
	events := store.Repos().Events

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	actorID := "d5b2e0a4-1111-4222-8333-944444444444"
	attestation := &custody.Attestation{
		Text:      custody.AttestationText,
		Signature: "Jordan Pruitt",
		SignedAt:  base,
		Origin:    "203.0.113.7",
	}
	seed := []custody.CustodyEvent{
		{KitID: kit.ID, EventType: custody.EventCheckoutOnPrem, ActorID: &actorID, ActorName: "Avery", CustodianName: "Jordan", Location: custody.LocationOnPremises, CreatedAt: base},
		{KitID: kit.ID, EventType: custody.EventCheckin, ActorID: &actorID, ActorName: "Avery", CustodianName: "Jordan", Location: custody.LocationOnPremises, CreatedAt: base.Add(time.Hour)},
		{KitID: kit.ID, EventType: custody.EventCheckoutOffsite, ActorName: "Jordan", CustodianName: "Jordan", Location: custody.LocationOffSite, Attestation: attestation, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i, ev := range seed {
		if _, err := events.Append(ctx, ev); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := events.ListByKit(ctx, kit.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[2].Attestation == nil || all[2].Attestation.Signature != "Jordan Pruitt" {
		t.Fatalf("attestation must round trip")
	}

	latest, err := events.LatestCheckout(ctx, kit.ID)
	if err != nil {
		t.Fatalf("latest checkout: %v", err)
	}
	if latest == nil || latest.EventType != custody.EventCheckoutOffsite {
		t.Fatalf("latest checkout = %+v", latest)
	}

	page, total, err := events.ListTimeline(ctx, usecase.TimelineFilter{
		Scope:     usecase.ScopeKit,
		SubjectID: kit.ID,
		SortAsc:   true,
		Limit:     2,
	})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("total = %d page = %d", total, len(page))
	}
	if page[0].EventType != custody.EventCheckoutOnPrem {
		t.Fatalf("ascending order violated: %s", page[0].EventType)
	}

	byActor, total, err := events.ListTimeline(ctx, usecase.TimelineFilter{
		Scope:     usecase.ScopeUser,
		SubjectID: actorID,
	})
	if err != nil {
		t.Fatalf("user timeline: %v", err)
	}
	if total != 2 || len(byActor) != 2 {
		t.Fatalf("user scope total = %d len = %d", total, len(byActor))
	}

	// An empty subject matches the whole ledger.
	whole, total, err := events.ListTimeline(ctx, usecase.TimelineFilter{})
	if err != nil {
		t.Fatalf("whole ledger: %v", err)
	}
	if total != 3 || len(whole) != 3 {
		t.Fatalf("whole ledger total = %d len = %d", total, len(whole))
	}
}

func TestItemRoundTrip(t *testing.T) {
	store, pool := newTestStore(t)
	ctx := context.Background()
	kit := createKit(t, store, "RF-001")
	items := store.Repos().Items

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	created, err := items.Create(ctx, custody.Item{
		KitID:        &kit.ID,
		Type:         custody.ItemTypeFirearm,
		Make:         "Anschutz",
		Model:        "8002",
		SerialNumber: "SN-ITEM-1",
		Quantity:     1,
		Status:       custody.ItemAssigned,
		CreatedAt:    now,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	got, err := items.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.SerialNumber != "SN-ITEM-1" || got.Type != custody.ItemTypeFirearm {
		t.Fatalf("item = %+v", got)
	}

	var stored *string
	if err := pool.QueryRow(ctx, `SELECT serial_number_encrypted FROM items WHERE id = $1`, created.ID).Scan(&stored); err != nil {
		t.Fatalf("read raw serial: %v", err)
	}
	if stored == nil || *stored == "SN-ITEM-1" {
		t.Fatalf("item serial must be encrypted at rest")
	}

	inKit, err := items.ListByKit(ctx, kit.ID)
	if err != nil {
		t.Fatalf("list by kit: %v", err)
	}
	if len(inKit) != 1 {
		t.Fatalf("expected 1 item in kit, got %d", len(inKit))
	}

	got.KitID = nil
	got.Status = custody.ItemAvailable
	updated, err := items.Update(ctx, got)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.KitID != nil {
		t.Fatalf("unassigned item must have no kit")
	}

	assigned := false
	free, total, err := items.List(ctx, usecase.ItemListFilter{Assigned: &assigned})
	if err != nil {
		t.Fatalf("list unassigned: %v", err)
	}
	if total != 1 || len(free) != 1 {
		t.Fatalf("unassigned total = %d len = %d", total, len(free))
	}

	if err := items.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := items.GetByID(ctx, created.ID); !errors.Is(err, custody.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := items.Delete(ctx, created.ID); !errors.Is(err, custody.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestPendingApprovalUniqueness(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	kit := createKit(t, store, "RF-001")
	approvals := store.Repos().Approvals

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	request := custody.ApprovalRequest{
		KitID:         kit.ID,
		RequesterID:   "d5b2e0a4-1111-4222-8333-944444444444",
		RequesterName: "Jordan Pruitt",
		CustodianName: "Jordan Pruitt",
		Status:        custody.ApprovalPending,
		Attestation: custody.Attestation{
			Text:      custody.AttestationText,
			Signature: "Jordan Pruitt",
			SignedAt:  now,
		},
		CreatedAt: now,
	}
	created, err := approvals.Create(ctx, request)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := approvals.Create(ctx, request); !errors.Is(err, custody.ErrConflict) {
		t.Fatalf("second pending: expected ErrConflict, got %v", err)
	}

	decidedAt := now.Add(time.Hour)
	created.Status = custody.ApprovalDenied
	created.DenialReason = "kit reserved"
	created.DecidedAt = &decidedAt
	if _, err := approvals.MarkDecided(ctx, created); err != nil {
		t.Fatalf("decide: %v", err)
	}
	if _, err := approvals.MarkDecided(ctx, created); !errors.Is(err, custody.ErrConflict) {
		t.Fatalf("second decide: expected ErrConflict, got %v", err)
	}

	// A decided request frees the kit for a new pending one.
	if _, err := approvals.Create(ctx, request); err != nil {
		t.Fatalf("new pending after decision: %v", err)
	}
}

func TestOpenMaintenanceUniqueness(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	kit := createKit(t, store, "RF-001")
	maintenance := store.Repos().Maintenance

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	event := custody.MaintenanceEvent{
		KitID:        kit.ID,
		OpenedByID:   "d5b2e0a4-1111-4222-8333-944444444444",
		OpenedByName: "Avery Stone",
		Notes:        "annual inspection",
		CreatedAt:    now,
	}
	opened, err := maintenance.Open(ctx, event)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := maintenance.Open(ctx, event); !errors.Is(err, custody.ErrConflict) {
		t.Fatalf("second open: expected ErrConflict, got %v", err)
	}

	closedAt := now.Add(time.Hour)
	closedBy := "e6c3f1b5-2222-4333-8444-a55555555555"
	opened.ClosedByID = &closedBy
	opened.ClosedByName = "Riley Oak"
	opened.ClosedAt = &closedAt
	closed, err := maintenance.Close(ctx, opened)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Open {
		t.Fatalf("window must be closed")
	}
	if _, err := maintenance.GetOpenForUpdate(ctx, kit.ID); !errors.Is(err, custody.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after close, got %v", err)
	}

	// The kit can enter maintenance again.
	if _, err := maintenance.Open(ctx, event); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}
