package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

// EventRepo writes and reads the custody ledger. There is deliberately no
// update or delete method.
type EventRepo struct {
	DB Querier
}

const eventColumns = `id, kit_id, event_type, actor_id, actor_name, custodian_id, custodian_name,
approved_by_id, approved_by_name, location, notes, expected_return_date,
attestation_text, attestation_signature, attestation_signed_at, attestation_origin, created_at`

func (r *EventRepo) Append(ctx context.Context, event custody.CustodyEvent) (custody.CustodyEvent, error) {
	var attText, attSignature, attOrigin *string
	var attSignedAt *time.Time
	if event.Attestation != nil {
		attText = &event.Attestation.Text
		attSignature = &event.Attestation.Signature
		attSignedAt = &event.Attestation.SignedAt
		attOrigin = &event.Attestation.Origin
	}
	query := `
INSERT INTO custody_events (kit_id, event_type, actor_id, actor_name, custodian_id, custodian_name,
	approved_by_id, approved_by_name, location, notes, expected_return_date,
	attestation_text, attestation_signature, attestation_signed_at, attestation_origin, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING id`
	row := r.DB.QueryRow(ctx, query,
		event.KitID,
		string(event.EventType),
		event.ActorID,
		event.ActorName,
		event.CustodianID,
		event.CustodianName,
		event.ApprovedByID,
		event.ApprovedByName,
		string(event.Location),
		event.Notes,
		event.ExpectedReturnDate,
		attText,
		attSignature,
		attSignedAt,
		attOrigin,
		event.CreatedAt,
	)
	if err := row.Scan(&event.ID); err != nil {
		return custody.CustodyEvent{}, err
	}
	return event, nil
}

func (r *EventRepo) LatestCheckout(ctx context.Context, kitID string) (*custody.CustodyEvent, error) {
	query := `
SELECT ` + eventColumns + `
FROM custody_events
WHERE kit_id = $1 AND event_type IN ('checkout_onprem', 'checkout_offsite')
ORDER BY created_at DESC
LIMIT 1`
	event, err := scanEvent(r.DB.QueryRow(ctx, query, kitID))
	if err != nil {
		if err == custody.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepo) ListByKit(ctx context.Context, kitID string) ([]custody.CustodyEvent, error) {
	query := `
SELECT ` + eventColumns + `
FROM custody_events
WHERE kit_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.Query(ctx, query, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *EventRepo) ListTimeline(ctx context.Context, filter usecase.TimelineFilter) ([]custody.CustodyEvent, int, error) {
	where, args := timelineWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM custody_events` + where
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY created_at DESC"
	if filter.SortAsc {
		order = " ORDER BY created_at ASC"
	}
	page := ""
	if filter.Limit > 0 {
		page = fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	query := `SELECT ` + eventColumns + ` FROM custody_events` + where + order + page
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func timelineWhere(filter usecase.TimelineFilter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SubjectID != "" {
		switch filter.Scope {
		case usecase.ScopeUser:
			p := arg(filter.SubjectID)
			clauses = append(clauses, fmt.Sprintf("(actor_id = %s OR custodian_id = %s)", p, p))
		default:
			clauses = append(clauses, "kit_id = "+arg(filter.SubjectID))
		}
	}
	if filter.EventType != "" {
		clauses = append(clauses, "event_type = "+arg(string(filter.EventType)))
	}
	if filter.Start != nil {
		clauses = append(clauses, "created_at >= "+arg(*filter.Start))
	}
	if filter.End != nil {
		clauses = append(clauses, "created_at <= "+arg(*filter.End))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func collectEvents(rows pgx.Rows) ([]custody.CustodyEvent, error) {
	var out []custody.CustodyEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanEvent(row pgx.Row) (custody.CustodyEvent, error) {
	var (
		event        custody.CustodyEvent
		eventType    string
		location     string
		attText      *string
		attSignature *string
		attSignedAt  *time.Time
		attOrigin    *string
	)
	if err := row.Scan(
		&event.ID,
		&event.KitID,
		&eventType,
		&event.ActorID,
		&event.ActorName,
		&event.CustodianID,
		&event.CustodianName,
		&event.ApprovedByID,
		&event.ApprovedByName,
		&location,
		&event.Notes,
		&event.ExpectedReturnDate,
		&attText,
		&attSignature,
		&attSignedAt,
		&attOrigin,
		&event.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return custody.CustodyEvent{}, custody.ErrNotFound
		}
		return custody.CustodyEvent{}, err
	}
	event.EventType = custody.EventType(eventType)
	event.Location = custody.Location(location)
	if attSignature != nil {
		att := custody.Attestation{Signature: *attSignature}
		if attText != nil {
			att.Text = *attText
		}
		if attSignedAt != nil {
			att.SignedAt = *attSignedAt
		}
		if attOrigin != nil {
			att.Origin = *attOrigin
		}
		event.Attestation = &att
	}
	return event, nil
}
