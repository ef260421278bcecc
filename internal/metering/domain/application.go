package metering

import (
	"strings"
	"time"

	sizing "solar-portal/internal/sizing/domain"
)

// ApplicationType is the metering arrangement the applicant asked for.
type ApplicationType string

const (
	TypeNetMetering   ApplicationType = "net"
	TypeGrossMetering ApplicationType = "gross"
	TypeSimpleSetup   ApplicationType = "simple"
)

// ParseApplicationType validates an application type value.
func ParseApplicationType(value string) (ApplicationType, bool) {
	switch ApplicationType(value) {
	case TypeNetMetering, TypeGrossMetering, TypeSimpleSetup:
		return ApplicationType(value), true
	default:
		return "", false
	}
}

// Category maps the application type onto the eligibility category.
func (t ApplicationType) Category() sizing.Category {
	switch t {
	case TypeNetMetering:
		return sizing.CategoryNetMetering
	case TypeGrossMetering:
		return sizing.CategoryGrossMetering
	case TypeSimpleSetup:
		return sizing.CategorySimpleSetup
	default:
		return sizing.CategoryIneligible
	}
}

// OwnershipType distinguishes property owners from tenants.
type OwnershipType string

const (
	OwnershipOwner  OwnershipType = "owner"
	OwnershipTenant OwnershipType = "tenant"
)

// StatusChange is one audit entry of the application's lifecycle.
type StatusChange struct {
	From      Status
	To        Status
	Actor     string
	ActorRole string
	Notes     string
	At        time.Time
}

// Application is a metering application record. Status must only move through
// Apply; external CRUD surfaces read it but never assign Status directly.
type Application struct {
	ReferenceCode       string
	ApplicantID         string
	Type                ApplicationType
	RequestedCapacityKw float64
	ConsumptionUnits    int
	PropertyType        string
	PropertyAddress     string
	Ownership           OwnershipType
	NOCMessage          string
	EstimatedCost       float64
	Status              Status
	ReviewerNotes       string
	SubmittedAt         time.Time
	LastUpdatedAt       time.Time
	History             []StatusChange
}

// NewApplication creates an application in the submitted state.
func NewApplication(referenceCode, applicantID string, appType ApplicationType, capacityKw float64, now time.Time) (*Application, error) {
	if referenceCode == "" || applicantID == "" {
		return nil, ErrInvalidApplication
	}
	if _, ok := ParseApplicationType(string(appType)); !ok {
		return nil, ErrInvalidApplication
	}
	if !sizing.Classify(capacityKw).Allows(appType.Category()) {
		return nil, ErrInvalidApplication
	}
	now = now.UTC()
	return &Application{
		ReferenceCode:       referenceCode,
		ApplicantID:         applicantID,
		Type:                appType,
		RequestedCapacityKw: capacityKw,
		Ownership:           OwnershipOwner,
		Status:              StatusSubmitted,
		SubmittedAt:         now,
		LastUpdatedAt:       now,
		History: []StatusChange{{
			To: StatusSubmitted,
			At: now,
		}},
	}, nil
}

// ValidateIntake checks the supplementary intake fields.
func (a *Application) ValidateIntake() error {
	if strings.TrimSpace(a.PropertyAddress) == "" {
		return ErrInvalidApplication
	}
	if a.Ownership != OwnershipOwner && a.Ownership != OwnershipTenant {
		return ErrInvalidApplication
	}
	// Tenants must carry a no-objection message from the owner.
	if a.Ownership == OwnershipTenant && strings.TrimSpace(a.NOCMessage) == "" {
		return ErrInvalidApplication
	}
	return nil
}

// Apply moves the application along one legal edge. On failure the
// application is left untouched, including LastUpdatedAt.
func (a *Application) Apply(transition Transition, actor, actorRole, notes string, now time.Time) error {
	edge, ok := transitionTable[transition]
	if !ok {
		return ErrInvalidTransition
	}
	if a.Status != edge.From {
		return ErrInvalidTransition
	}

	now = now.UTC()
	change := StatusChange{
		From:      a.Status,
		To:        edge.To,
		Actor:     actor,
		ActorRole: actorRole,
		Notes:     notes,
		At:        now,
	}
	a.Status = edge.To
	a.LastUpdatedAt = now
	if notes != "" {
		a.ReviewerNotes = notes
	}
	a.History = append(a.History, change)
	return nil
}

// Clone returns a detached copy with its own history slice.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	copy := *a
	copy.History = append([]StatusChange(nil), a.History...)
	return &copy
}
