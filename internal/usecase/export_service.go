package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// ExportFormat selects the wire encoding for a ledger export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// ExportService streams ledger events out for audits and record keeping.
type ExportService struct {
	Store Store
}

func NewExportService(store Store) *ExportService {
	return &ExportService{Store: store}
}

// eventRecord is the flattened export row. The attestation body is reduced to
// a signed flag; the full text lives on the approval request.
type eventRecord struct {
	ID                 string `json:"id"`
	KitID              string `json:"kit_id"`
	EventType          string `json:"event_type"`
	Location           string `json:"location"`
	ActorID            string `json:"actor_id,omitempty"`
	ActorName          string `json:"actor_name,omitempty"`
	CustodianID        string `json:"custodian_id,omitempty"`
	CustodianName      string `json:"custodian_name,omitempty"`
	ApprovedByID       string `json:"approved_by_id,omitempty"`
	ApprovedByName     string `json:"approved_by_name,omitempty"`
	ExpectedReturnDate string `json:"expected_return_date,omitempty"`
	Attested           bool   `json:"attested"`
	Notes              string `json:"notes,omitempty"`
	CreatedAt          string `json:"created_at"`
}

// ExportEvents writes all events matching the filter to w in the requested
// format. Pagination on the filter is ignored; an export is always complete.
func (s *ExportService) ExportEvents(ctx context.Context, actor custody.Actor, filter TimelineFilter, format ExportFormat, w io.Writer) error {
	if err := custody.Authorize(actor, custody.OpEventExport); err != nil {
		return err
	}
	filter.Offset = 0
	filter.Limit = 0
	events, _, err := s.Store.Repos().Events.ListTimeline(ctx, filter)
	if err != nil {
		return err
	}
	records := make([]eventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, toRecord(ev))
	}
	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case ExportCSV:
		return writeRecordsCSV(w, records)
	default:
		return custody.ErrInvalidInput
	}
}

func toRecord(ev custody.CustodyEvent) eventRecord {
	return eventRecord{
		ID:                 ev.ID,
		KitID:              ev.KitID,
		EventType:          string(ev.EventType),
		Location:           string(ev.Location),
		ActorID:            strDeref(ev.ActorID),
		ActorName:          ev.ActorName,
		CustodianID:        strDeref(ev.CustodianID),
		CustodianName:      ev.CustodianName,
		ApprovedByID:       strDeref(ev.ApprovedByID),
		ApprovedByName:     ev.ApprovedByName,
		ExpectedReturnDate: dateDeref(ev.ExpectedReturnDate),
		Attested:           ev.Attestation != nil,
		Notes:              ev.Notes,
		CreatedAt:          ev.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func writeRecordsCSV(w io.Writer, records []eventRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "kit_id", "event_type", "location",
		"actor_id", "actor_name", "custodian_id", "custodian_name",
		"approved_by_id", "approved_by_name", "expected_return_date",
		"attested", "notes", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ID, rec.KitID, rec.EventType, rec.Location,
			rec.ActorID, rec.ActorName, rec.CustodianID, rec.CustodianName,
			rec.ApprovedByID, rec.ApprovedByName, rec.ExpectedReturnDate,
			strconv.FormatBool(rec.Attested), rec.Notes, rec.CreatedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func strDeref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func dateDeref(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}
