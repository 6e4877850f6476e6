package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

type ApprovalRepo struct {
	DB Querier
}

const approvalColumns = `id, kit_id, requester_id, requester_name, custodian_id, custodian_name,
status, approver_id, approver_name, approver_role, notes, denial_reason, expected_return_date,
attestation_text, attestation_signature, attestation_signed_at, attestation_origin, created_at, decided_at`

func (r *ApprovalRepo) Create(ctx context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error) {
	query := `
INSERT INTO approval_requests (kit_id, requester_id, requester_name, custodian_id, custodian_name,
	status, notes, expected_return_date,
	attestation_text, attestation_signature, attestation_signed_at, attestation_origin, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`
	row := r.DB.QueryRow(ctx, query,
		request.KitID,
		request.RequesterID,
		request.RequesterName,
		request.CustodianID,
		request.CustodianName,
		string(request.Status),
		request.Notes,
		request.ExpectedReturnDate,
		request.Attestation.Text,
		request.Attestation.Signature,
		request.Attestation.SignedAt,
		request.Attestation.Origin,
		request.CreatedAt,
	)
	if err := row.Scan(&request.ID); err != nil {
		if isUniqueViolation(err) {
			return custody.ApprovalRequest{}, custody.ErrConflict
		}
		return custody.ApprovalRequest{}, err
	}
	return request, nil
}

func (r *ApprovalRepo) GetForUpdate(ctx context.Context, id string) (custody.ApprovalRequest, error) {
	query := `SELECT ` + approvalColumns + ` FROM approval_requests WHERE id = $1 FOR UPDATE`
	return scanApproval(r.DB.QueryRow(ctx, query, id))
}

func (r *ApprovalRepo) HasPending(ctx context.Context, kitID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM approval_requests WHERE kit_id = $1 AND status = 'pending')`
	var exists bool
	if err := r.DB.QueryRow(ctx, query, kitID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *ApprovalRepo) MarkDecided(ctx context.Context, request custody.ApprovalRequest) (custody.ApprovalRequest, error) {
	query := `
UPDATE approval_requests
SET status = $2,
    approver_id = $3,
    approver_name = $4,
    approver_role = $5,
    denial_reason = $6,
    decided_at = $7
WHERE id = $1 AND status = 'pending'
RETURNING id`
	row := r.DB.QueryRow(ctx, query,
		request.ID,
		string(request.Status),
		request.ApproverID,
		request.ApproverName,
		string(request.ApproverRole),
		request.DenialReason,
		request.DecidedAt,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return custody.ApprovalRequest{}, custody.ErrConflict
		}
		return custody.ApprovalRequest{}, err
	}
	return request, nil
}

func (r *ApprovalRepo) ListPending(ctx context.Context) ([]custody.ApprovalRequest, error) {
	query := `
SELECT ` + approvalColumns + `
FROM approval_requests
WHERE status = 'pending'
ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []custody.ApprovalRequest
	for rows.Next() {
		request, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, request)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanApproval(row pgx.Row) (custody.ApprovalRequest, error) {
	var (
		request      custody.ApprovalRequest
		status       string
		approverRole string
	)
	if err := row.Scan(
		&request.ID,
		&request.KitID,
		&request.RequesterID,
		&request.RequesterName,
		&request.CustodianID,
		&request.CustodianName,
		&status,
		&request.ApproverID,
		&request.ApproverName,
		&approverRole,
		&request.Notes,
		&request.DenialReason,
		&request.ExpectedReturnDate,
		&request.Attestation.Text,
		&request.Attestation.Signature,
		&request.Attestation.SignedAt,
		&request.Attestation.Origin,
		&request.CreatedAt,
		&request.DecidedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return custody.ApprovalRequest{}, custody.ErrNotFound
		}
		return custody.ApprovalRequest{}, err
	}
	request.Status = custody.ApprovalStatus(status)
	request.ApproverRole = custody.Role(approverRole)
	return request, nil
}
