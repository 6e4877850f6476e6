package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

type MaintenanceRepo struct {
	DB Querier
}

const maintenanceColumns = `id, kit_id, opened_by_id, opened_by_name, closed_by_id, closed_by_name,
notes, parts_replaced, round_count, open, next_maintenance_date, created_at, closed_at`

func (r *MaintenanceRepo) Open(ctx context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error) {
	query := `
INSERT INTO maintenance_events (kit_id, opened_by_id, opened_by_name, notes, parts_replaced, round_count, open, created_at)
VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
RETURNING id`
	row := r.DB.QueryRow(ctx, query,
		event.KitID,
		event.OpenedByID,
		event.OpenedByName,
		event.Notes,
		event.PartsReplaced,
		event.RoundCount,
		event.CreatedAt,
	)
	if err := row.Scan(&event.ID); err != nil {
		if isUniqueViolation(err) {
			return custody.MaintenanceEvent{}, custody.ErrConflict
		}
		return custody.MaintenanceEvent{}, err
	}
	event.Open = true
	return event, nil
}

func (r *MaintenanceRepo) GetOpenForUpdate(ctx context.Context, kitID string) (custody.MaintenanceEvent, error) {
	query := `SELECT ` + maintenanceColumns + ` FROM maintenance_events WHERE kit_id = $1 AND open FOR UPDATE`
	return scanMaintenance(r.DB.QueryRow(ctx, query, kitID))
}

func (r *MaintenanceRepo) Close(ctx context.Context, event custody.MaintenanceEvent) (custody.MaintenanceEvent, error) {
	query := `
UPDATE maintenance_events
SET closed_by_id = $2,
    closed_by_name = $3,
    notes = $4,
    parts_replaced = $5,
    round_count = $6,
    open = FALSE,
    next_maintenance_date = $7,
    closed_at = $8
WHERE id = $1 AND open
RETURNING id`
	row := r.DB.QueryRow(ctx, query,
		event.ID,
		event.ClosedByID,
		event.ClosedByName,
		event.Notes,
		event.PartsReplaced,
		event.RoundCount,
		event.NextMaintenanceDate,
		event.ClosedAt,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return custody.MaintenanceEvent{}, custody.ErrConflict
		}
		return custody.MaintenanceEvent{}, err
	}
	event.Open = false
	return event, nil
}

func (r *MaintenanceRepo) ListByKit(ctx context.Context, kitID string) ([]custody.MaintenanceEvent, error) {
	query := `
SELECT ` + maintenanceColumns + `
FROM maintenance_events
WHERE kit_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.Query(ctx, query, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []custody.MaintenanceEvent
	for rows.Next() {
		event, err := scanMaintenance(rows)
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

func scanMaintenance(row pgx.Row) (custody.MaintenanceEvent, error) {
	var event custody.MaintenanceEvent
	if err := row.Scan(
		&event.ID,
		&event.KitID,
		&event.OpenedByID,
		&event.OpenedByName,
		&event.ClosedByID,
		&event.ClosedByName,
		&event.Notes,
		&event.PartsReplaced,
		&event.RoundCount,
		&event.Open,
		&event.NextMaintenanceDate,
		&event.CreatedAt,
		&event.ClosedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return custody.MaintenanceEvent{}, custody.ErrNotFound
		}
		return custody.MaintenanceEvent{}, err
	}
	return event, nil
}
