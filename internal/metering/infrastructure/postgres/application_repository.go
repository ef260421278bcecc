package postgres

import (
	"context"
	"database/sql"
	"errors"

	metering "solar-portal/internal/metering/domain"
)

// ApplicationRepository is a Postgres implementation for metering
// applications. Transitions run inside a transaction holding a row lock, so
// concurrent updates on the same reference code are serialized.
type ApplicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository constructs a repository.
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Get loads an application with its status history.
func (r *ApplicationRepository) Get(ctx context.Context, referenceCode string) (*metering.Application, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("application repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT reference_code, applicant_id, application_type, requested_capacity_kw,
	consumption_units, property_type, property_address, ownership, noc_message,
	estimated_cost, status, reviewer_notes, submitted_at, last_updated_at
FROM metering_applications
WHERE reference_code = $1
LIMIT 1`, referenceCode)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	history, err := r.loadHistory(ctx, referenceCode)
	if err != nil {
		return nil, err
	}
	app.History = history
	return app, nil
}

// Exists reports whether a reference code is taken.
func (r *ApplicationRepository) Exists(ctx context.Context, referenceCode string) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("application repo: nil db")
	}
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1 FROM metering_applications WHERE reference_code = $1`, referenceCode).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new application and its initial history row.
func (r *ApplicationRepository) Create(ctx context.Context, app *metering.Application) error {
	if r == nil || r.db == nil {
		return errors.New("application repo: nil db")
	}
	if app == nil || app.ReferenceCode == "" {
		return metering.ErrInvalidApplication
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
INSERT INTO metering_applications (
	reference_code, applicant_id, application_type, requested_capacity_kw,
	consumption_units, property_type, property_address, ownership, noc_message,
	estimated_cost, status, reviewer_notes, submitted_at, last_updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
ON CONFLICT (reference_code) DO NOTHING`,
		app.ReferenceCode, app.ApplicantID, string(app.Type), app.RequestedCapacityKw,
		app.ConsumptionUnits, app.PropertyType, app.PropertyAddress, string(app.Ownership), app.NOCMessage,
		app.EstimatedCost, string(app.Status), app.ReviewerNotes, app.SubmittedAt, app.LastUpdatedAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return metering.ErrAlreadyExists
	}
	for _, change := range app.History {
		if err := insertHistory(ctx, tx, app.ReferenceCode, change); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Update applies fn to the current record under a row lock and persists the
// result. A status moved by a competing writer between read and write
// surfaces as ErrConflict.
func (r *ApplicationRepository) Update(ctx context.Context, referenceCode string, fn func(*metering.Application) error) (*metering.Application, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("application repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
SELECT reference_code, applicant_id, application_type, requested_capacity_kw,
	consumption_units, property_type, property_address, ownership, noc_message,
	estimated_cost, status, reviewer_notes, submitted_at, last_updated_at
FROM metering_applications
WHERE reference_code = $1
FOR UPDATE`, referenceCode)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	priorStatus := app.Status
	priorHistory := len(app.History)

	if err := fn(app); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, `
UPDATE metering_applications
SET status = $1, reviewer_notes = $2, last_updated_at = $3
WHERE reference_code = $4 AND status = $5`,
		string(app.Status), app.ReviewerNotes, app.LastUpdatedAt, referenceCode, string(priorStatus))
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, metering.ErrConflict
	}
	for _, change := range app.History[priorHistory:] {
		if err := insertHistory(ctx, tx, referenceCode, change); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	history, err := r.loadHistory(ctx, referenceCode)
	if err == nil {
		app.History = history
	}
	return app, nil
}

// List returns applications, optionally filtered by status, newest first.
func (r *ApplicationRepository) List(ctx context.Context, status metering.Status) ([]*metering.Application, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("application repo: nil db")
	}
	query := `
SELECT reference_code, applicant_id, application_type, requested_capacity_kw,
	consumption_units, property_type, property_address, ownership, noc_message,
	estimated_cost, status, reviewer_notes, submitted_at, last_updated_at
FROM metering_applications`
	args := []any{}
	if status != "" {
		query += `
WHERE status = $1`
		args = append(args, string(status))
	}
	query += `
ORDER BY submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*metering.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func (r *ApplicationRepository) loadHistory(ctx context.Context, referenceCode string) ([]metering.StatusChange, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT from_status, to_status, actor, actor_role, notes, changed_at
FROM metering_application_history
WHERE reference_code = $1
ORDER BY changed_at ASC, id ASC`, referenceCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []metering.StatusChange
	for rows.Next() {
		var change metering.StatusChange
		var from, to string
		if err := rows.Scan(&from, &to, &change.Actor, &change.ActorRole, &change.Notes, &change.At); err != nil {
			return nil, err
		}
		change.From = metering.Status(from)
		change.To = metering.Status(to)
		history = append(history, change)
	}
	return history, rows.Err()
}

func insertHistory(ctx context.Context, tx *sql.Tx, referenceCode string, change metering.StatusChange) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO metering_application_history (
	reference_code, from_status, to_status, actor, actor_role, notes, changed_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)`, referenceCode, string(change.From), string(change.To), change.Actor, change.ActorRole, change.Notes, change.At)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*metering.Application, error) {
	var app metering.Application
	var appType, ownership, status string
	err := row.Scan(
		&app.ReferenceCode, &app.ApplicantID, &appType, &app.RequestedCapacityKw,
		&app.ConsumptionUnits, &app.PropertyType, &app.PropertyAddress, &ownership, &app.NOCMessage,
		&app.EstimatedCost, &status, &app.ReviewerNotes, &app.SubmittedAt, &app.LastUpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, metering.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	app.Type = metering.ApplicationType(appType)
	app.Ownership = metering.OwnershipType(ownership)
	app.Status = metering.Status(status)
	return &app, nil
}
