package custody

import "time"

// DefaultExtendedCustodyDays is the threshold after which a checkout is
// flagged as extended custody.
const DefaultExtendedCustodyDays = 7

// WarningSet is the advisory output of the warnings calculator. Flags never
// block a transition and are recomputed on every read, never stored.
type WarningSet struct {
	HasWarning             bool       `json:"has_warning"`
	OverdueReturn          bool       `json:"overdue_return"`
	DaysOverdue            int        `json:"days_overdue,omitempty"`
	ExtendedCustody        bool       `json:"extended_custody"`
	DaysCheckedOut         int        `json:"days_checked_out,omitempty"`
	OverdueMaintenance     bool       `json:"overdue_maintenance"`
	DaysMaintenanceOverdue int        `json:"days_maintenance_overdue,omitempty"`
	ExpectedReturnDate     *time.Time `json:"expected_return_date,omitempty"`
	CheckoutAt             *time.Time `json:"checkout_at,omitempty"`
}

// ComputeWarnings derives soft warnings for a kit from its projection and the
// most recent checkout-class ledger event. latestCheckout may be nil for kits
// that are not checked out. extendedDays <= 0 falls back to the default.
func ComputeWarnings(kit Kit, latestCheckout *CustodyEvent, today time.Time, extendedDays int) WarningSet {
	if extendedDays <= 0 {
		extendedDays = DefaultExtendedCustodyDays
	}
	var w WarningSet

	if kit.Status == StatusCheckedOut && latestCheckout != nil {
		checkoutAt := latestCheckout.CreatedAt
		w.CheckoutAt = &checkoutAt
		w.DaysCheckedOut = daysBetween(checkoutAt, today)

		if latestCheckout.ExpectedReturnDate != nil {
			due := *latestCheckout.ExpectedReturnDate
			w.ExpectedReturnDate = &due
			if overdue := daysBetween(due, today); overdue > 0 {
				w.OverdueReturn = true
				w.DaysOverdue = overdue
				w.HasWarning = true
			}
		}
		if w.DaysCheckedOut >= extendedDays {
			w.ExtendedCustody = true
			w.HasWarning = true
		}
	}

	if kit.Status != StatusInMaintenance && kit.NextMaintenanceDate != nil {
		if overdue := daysBetween(*kit.NextMaintenanceDate, today); overdue > 0 {
			w.OverdueMaintenance = true
			w.DaysMaintenanceOverdue = overdue
			w.HasWarning = true
		}
	}
	return w
}

// daysBetween counts whole calendar days from a to b in UTC. Negative when b
// is before a.
func daysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	ad := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}
