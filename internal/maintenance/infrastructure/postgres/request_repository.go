package postgres

import (
	"context"
	"database/sql"
	"errors"

	maintenance "solar-portal/internal/maintenance/domain"
)

// RequestRepository is a Postgres implementation for maintenance requests.
// Updates run inside a transaction holding a row lock with a status guard, so
// concurrent transitions on the same request are serialized.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository constructs a repository.
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Get loads a request by id.
func (r *RequestRepository) Get(ctx context.Context, id string) (*maintenance.Request, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("maintenance repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, requester_id, request_type, system_capacity_kw, issue_description,
	preferred_date, status, admin_notes, created_at, last_updated_at
FROM maintenance_requests
WHERE id = $1
LIMIT 1`, id)
	return scanRequest(row)
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *maintenance.Request) error {
	if r == nil || r.db == nil {
		return errors.New("maintenance repo: nil db")
	}
	if request == nil || request.ID == "" {
		return maintenance.ErrInvalidRequest
	}
	result, err := r.db.ExecContext(ctx, `
INSERT INTO maintenance_requests (
	id, requester_id, request_type, system_capacity_kw, issue_description,
	preferred_date, status, admin_notes, created_at, last_updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT (id) DO NOTHING`,
		request.ID, request.RequesterID, string(request.RequestType), request.SystemCapacityKw, request.IssueDescription,
		request.PreferredDate, string(request.Status), request.AdminNotes, request.CreatedAt, request.LastUpdatedAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return maintenance.ErrInvalidRequest
	}
	return nil
}

// Update applies fn to the current record under a row lock and persists the
// result. A status moved by a competing writer surfaces as ErrInvalidTransition
// through the status guard.
func (r *RequestRepository) Update(ctx context.Context, id string, fn func(*maintenance.Request) error) (*maintenance.Request, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("maintenance repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
SELECT id, requester_id, request_type, system_capacity_kw, issue_description,
	preferred_date, status, admin_notes, created_at, last_updated_at
FROM maintenance_requests
WHERE id = $1
FOR UPDATE`, id)
	request, err := scanRequest(row)
	if err != nil {
		return nil, err
	}
	priorStatus := request.Status

	if err := fn(request); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
UPDATE maintenance_requests
SET status = $1, admin_notes = $2, last_updated_at = $3
WHERE id = $4 AND status = $5`,
		string(request.Status), request.AdminNotes, request.LastUpdatedAt, id, string(priorStatus))
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, maintenance.ErrInvalidTransition
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return request, nil
}

// List returns requests, optionally filtered by status, newest first.
func (r *RequestRepository) List(ctx context.Context, status maintenance.Status) ([]*maintenance.Request, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("maintenance repo: nil db")
	}
	query := `
SELECT id, requester_id, request_type, system_capacity_kw, issue_description,
	preferred_date, status, admin_notes, created_at, last_updated_at
FROM maintenance_requests`
	args := []any{}
	if status != "" {
		query += `
WHERE status = $1`
		args = append(args, string(status))
	}
	query += `
ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*maintenance.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, request)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*maintenance.Request, error) {
	var request maintenance.Request
	var requestType, status string
	err := row.Scan(
		&request.ID, &request.RequesterID, &requestType, &request.SystemCapacityKw, &request.IssueDescription,
		&request.PreferredDate, &status, &request.AdminNotes, &request.CreatedAt, &request.LastUpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, maintenance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	request.RequestType = maintenance.RequestType(requestType)
	request.Status = maintenance.Status(status)
	return &request, nil
}
