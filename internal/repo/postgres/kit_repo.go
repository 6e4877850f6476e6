package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/J2WFFDev/custody-manager/internal/crypto"
	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

type KitRepo struct {
	DB     Querier
	Cipher *crypto.FieldCipher
}

const kitColumns = `id, code, name, description, serial_number_encrypted, status,
current_custodian_id, current_custodian_name, next_maintenance_date, created_at, updated_at`

func (r *KitRepo) Create(ctx context.Context, kit custody.Kit) (custody.Kit, error) {
	serial, err := r.encryptSerial(kit.SerialNumber)
	if err != nil {
		return custody.Kit{}, err
	}
	query := `
INSERT INTO kits (code, name, description, serial_number_encrypted, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`
	row := r.DB.QueryRow(ctx, query,
		kit.Code,
		kit.Name,
		kit.Description,
		serial,
		string(kit.Status),
	)
	if err := row.Scan(&kit.ID, &kit.CreatedAt, &kit.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return custody.Kit{}, custody.ErrConflict
		}
		return custody.Kit{}, err
	}
	return kit, nil
}

func (r *KitRepo) GetByID(ctx context.Context, id string) (custody.Kit, error) {
	query := `SELECT ` + kitColumns + ` FROM kits WHERE id = $1`
	return r.scanKit(r.DB.QueryRow(ctx, query, id))
}

func (r *KitRepo) GetByCode(ctx context.Context, code string) (custody.Kit, error) {
	query := `SELECT ` + kitColumns + ` FROM kits WHERE code = $1`
	return r.scanKit(r.DB.QueryRow(ctx, query, code))
}

func (r *KitRepo) GetByCodeForUpdate(ctx context.Context, code string) (custody.Kit, error) {
	query := `SELECT ` + kitColumns + ` FROM kits WHERE code = $1 FOR UPDATE`
	return r.scanKit(r.DB.QueryRow(ctx, query, code))
}

func (r *KitRepo) GetByIDForUpdate(ctx context.Context, id string) (custody.Kit, error) {
	query := `SELECT ` + kitColumns + ` FROM kits WHERE id = $1 FOR UPDATE`
	return r.scanKit(r.DB.QueryRow(ctx, query, id))
}

func (r *KitRepo) UpdateProjection(ctx context.Context, kit custody.Kit) (custody.Kit, error) {
	query := `
UPDATE kits
SET status = $2,
    current_custodian_id = $3,
    current_custodian_name = $4,
    next_maintenance_date = $5,
    updated_at = now()
WHERE id = $1
RETURNING updated_at`
	row := r.DB.QueryRow(ctx, query,
		kit.ID,
		string(kit.Status),
		kit.CustodianID,
		kit.CustodianName,
		kit.NextMaintenanceDate,
	)
	if err := row.Scan(&kit.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return custody.Kit{}, custody.ErrNotFound
		}
		return custody.Kit{}, err
	}
	return kit, nil
}

func (r *KitRepo) ListByStatus(ctx context.Context, status custody.KitStatus) ([]custody.Kit, error) {
	query := `SELECT ` + kitColumns + ` FROM kits WHERE status = $1 ORDER BY code ASC`
	rows, err := r.DB.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []custody.Kit
	for rows.Next() {
		kit, err := r.scanKit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, kit)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *KitRepo) List(ctx context.Context, status custody.KitStatus, offset, limit int) ([]custody.Kit, int, error) {
	where := ""
	var args []any
	if status != "" {
		where = ` WHERE status = $1`
		args = append(args, string(status))
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM kits`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + kitColumns + ` FROM kits` + where + ` ORDER BY code ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	}
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var out []custody.Kit
	for rows.Next() {
		kit, err := r.scanKit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, kit)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return out, total, nil
}

func (r *KitRepo) scanKit(row pgx.Row) (custody.Kit, error) {
	var (
		kit         custody.Kit
		status      string
		serial      *string
		custodianID *string
		nextMaint   *time.Time
	)
	if err := row.Scan(
		&kit.ID,
		&kit.Code,
		&kit.Name,
		&kit.Description,
		&serial,
		&status,
		&custodianID,
		&kit.CustodianName,
		&nextMaint,
		&kit.CreatedAt,
		&kit.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return custody.Kit{}, custody.ErrNotFound
		}
		return custody.Kit{}, err
	}
	kit.Status = custody.KitStatus(status)
	kit.CustodianID = custodianID
	kit.NextMaintenanceDate = nextMaint
	if serial != nil && *serial != "" {
		plain, err := r.Cipher.Decrypt(*serial)
		if err != nil {
			return custody.Kit{}, err
		}
		kit.SerialNumber = plain
	}
	return kit, nil
}

func (r *KitRepo) encryptSerial(serial string) (*string, error) {
	if serial == "" {
		return nil, nil
	}
	token, err := r.Cipher.Encrypt(serial)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
