package application

import (
	"context"
	"errors"
	"time"

	metering "solar-portal/internal/metering/domain"
)

// Snapshot is the customer-facing projection of an application. Reviewer
// notes and applicant details stay behind this boundary on purpose.
type Snapshot struct {
	ReferenceCode       string    `json:"reference_code"`
	Type                string    `json:"type"`
	Status              string    `json:"status"`
	RequestedCapacityKw float64   `json:"requested_capacity_kw"`
	SubmittedAt         time.Time `json:"submitted_at"`
	LastUpdatedAt       time.Time `json:"last_updated_at"`
}

// StatusTracker answers reference-code status queries. Read-only and
// side-effect free: repeated lookups without an intervening transition
// return identical snapshots.
type StatusTracker struct {
	repo metering.Repository
}

// NewStatusTracker constructs a tracker.
func NewStatusTracker(repo metering.Repository) (*StatusTracker, error) {
	if repo == nil {
		return nil, errors.New("status tracker: nil repo")
	}
	return &StatusTracker{repo: repo}, nil
}

// Lookup resolves a reference code to the current lifecycle state. Unknown
// codes return metering.ErrNotFound.
func (t *StatusTracker) Lookup(ctx context.Context, referenceCode string) (Snapshot, error) {
	if referenceCode == "" {
		return Snapshot{}, metering.ErrNotFound
	}
	app, err := t.repo.Get(ctx, referenceCode)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ReferenceCode:       app.ReferenceCode,
		Type:                string(app.Type),
		Status:              string(app.Status),
		RequestedCapacityKw: app.RequestedCapacityKw,
		SubmittedAt:         app.SubmittedAt,
		LastUpdatedAt:       app.LastUpdatedAt,
	}, nil
}
