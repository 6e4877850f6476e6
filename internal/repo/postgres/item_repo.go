package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/J2WFFDev/custody-manager/internal/crypto"
	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
	"github.com/J2WFFDev/custody-manager/internal/usecase"
)

type ItemRepo struct {
	DB     Querier
	Cipher *crypto.FieldCipher
}

const itemColumns = `id, kit_id, item_type, make, model, serial_number_encrypted,
friendly_name, photo_url, quantity, status, notes, created_at, updated_at`

func (r *ItemRepo) Create(ctx context.Context, item custody.Item) (custody.Item, error) {
	serial, err := r.encryptItemSerial(item.SerialNumber)
	if err != nil {
		return custody.Item{}, err
	}
	query := `
INSERT INTO items (kit_id, item_type, make, model, serial_number_encrypted,
friendly_name, photo_url, quantity, status, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, updated_at`
	row := r.DB.QueryRow(ctx, query,
		item.KitID,
		string(item.Type),
		item.Make,
		item.Model,
		serial,
		item.FriendlyName,
		item.PhotoURL,
		item.Quantity,
		string(item.Status),
		item.Notes,
		item.CreatedAt,
	)
	if err := row.Scan(&item.ID, &item.UpdatedAt); err != nil {
		return custody.Item{}, err
	}
	return item, nil
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (custody.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.scanItem(r.DB.QueryRow(ctx, query, id))
}

func (r *ItemRepo) GetByIDForUpdate(ctx context.Context, id string) (custody.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE`
	return r.scanItem(r.DB.QueryRow(ctx, query, id))
}

func (r *ItemRepo) Update(ctx context.Context, item custody.Item) (custody.Item, error) {
	serial, err := r.encryptItemSerial(item.SerialNumber)
	if err != nil {
		return custody.Item{}, err
	}
	query := `
UPDATE items
SET kit_id = $2,
    make = $3,
    model = $4,
    serial_number_encrypted = $5,
    friendly_name = $6,
    photo_url = $7,
    quantity = $8,
    status = $9,
    notes = $10,
    updated_at = now()
WHERE id = $1
RETURNING updated_at`
	row := r.DB.QueryRow(ctx, query,
		item.ID,
		item.KitID,
		item.Make,
		item.Model,
		serial,
		item.FriendlyName,
		item.PhotoURL,
		item.Quantity,
		string(item.Status),
		item.Notes,
	)
	if err := row.Scan(&item.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return custody.Item{}, custody.ErrNotFound
		}
		return custody.Item{}, err
	}
	return item, nil
}

func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return custody.ErrNotFound
	}
	return nil
}

func (r *ItemRepo) List(ctx context.Context, filter usecase.ItemListFilter) ([]custody.Item, int, error) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = "+arg(string(filter.Status)))
	}
	if filter.Type != "" {
		clauses = append(clauses, "item_type = "+arg(string(filter.Type)))
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			clauses = append(clauses, "kit_id IS NOT NULL")
		} else {
			clauses = append(clauses, "kit_id IS NULL")
		}
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + itemColumns + ` FROM items` + where + ` ORDER BY created_at ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items, err := r.collectItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ItemRepo) ListByKit(ctx context.Context, kitID string) ([]custody.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE kit_id = $1 ORDER BY created_at ASC`
	rows, err := r.DB.Query(ctx, query, kitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectItems(rows)
}

func (r *ItemRepo) collectItems(rows pgx.Rows) ([]custody.Item, error) {
	var out []custody.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ItemRepo) scanItem(row pgx.Row) (custody.Item, error) {
	var (
		item     custody.Item
		itemType string
		status   string
		serial   *string
	)
	if err := row.Scan(
		&item.ID,
		&item.KitID,
		&itemType,
		&item.Make,
		&item.Model,
		&serial,
		&item.FriendlyName,
		&item.PhotoURL,
		&item.Quantity,
		&status,
		&item.Notes,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return custody.Item{}, custody.ErrNotFound
		}
		return custody.Item{}, err
	}
	item.Type = custody.ItemType(itemType)
	item.Status = custody.ItemStatus(status)
	if serial != nil && *serial != "" {
		plain, err := r.Cipher.Decrypt(*serial)
		if err != nil {
			return custody.Item{}, err
		}
		item.SerialNumber = plain
	}
	return item, nil
}

func (r *ItemRepo) encryptItemSerial(serial string) (*string, error) {
	if serial == "" {
		return nil, nil
	}
	token, err := r.Cipher.Encrypt(serial)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
