package application

import (
	"context"
	"errors"
	"log"
	"time"

	"solar-portal/internal/auth"
	"solar-portal/internal/eventing"
	meteringevents "solar-portal/internal/metering/application/events"
	metering "solar-portal/internal/metering/domain"
	"solar-portal/internal/observability/metrics"
	sizing "solar-portal/internal/sizing/domain"
)

// SubmitRequest carries the intake form for a new metering application. The
// applicant either declares a capacity or provides bill and roof area for the
// calculator to size one.
type SubmitRequest struct {
	ApplicantID          string  `json:"applicant_id"`
	ApplicationType      string  `json:"application_type"`
	RequestedCapacityKw  float64 `json:"requested_capacity_kw"`
	MonthlyBillAmount    float64 `json:"monthly_bill_amount"`
	RoofAreaSquareMeters float64 `json:"roof_area_sqm"`
	ConsumptionUnits     int     `json:"consumption_units"`
	PropertyType         string  `json:"property_type"`
	PropertyAddress      string  `json:"property_address"`
	Ownership            string  `json:"ownership"`
	NOCMessage           string  `json:"noc_message"`
}

// TransitionRequest asks for one lifecycle transition on an application.
type TransitionRequest struct {
	ReferenceCode string
	Transition    metering.Transition
	Actor         string
	ActorRole     auth.Role
	Notes         string
}

// Service drives the metering application lifecycle.
type Service struct {
	repo       metering.Repository
	allocator  *metering.ReferenceAllocator
	calculator *sizing.Calculator
	publisher  *eventing.Publisher
	logger     *log.Logger
	now        func() time.Time
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger overrides the logger used for post-commit publish failures.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the lifecycle service.
func NewService(repo metering.Repository, allocator *metering.ReferenceAllocator, calculator *sizing.Calculator, publisher *eventing.Publisher, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("metering service: nil repo")
	}
	if allocator == nil {
		return nil, errors.New("metering service: nil allocator")
	}
	if calculator == nil {
		return nil, errors.New("metering service: nil calculator")
	}
	s := &Service{
		repo:       repo,
		allocator:  allocator,
		calculator: calculator,
		publisher:  publisher,
		logger:     log.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit validates the intake, sizes the system when the applicant used the
// calculator, classifies eligibility, mints a reference code and records the
// application in the submitted state.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*metering.Application, error) {
	capacity := req.RequestedCapacityKw
	if capacity <= 0 {
		rec := s.calculator.Compute(sizing.Input{
			MonthlyBillAmount:    req.MonthlyBillAmount,
			RoofAreaSquareMeters: req.RoofAreaSquareMeters,
		})
		if rec == nil {
			metrics.IncSubmission(req.ApplicationType, metrics.ResultError)
			return nil, metering.ErrInvalidApplication
		}
		capacity = rec.RecommendedCapacityKw
	}

	eligibility := sizing.Classify(capacity)
	appType, declared := metering.ParseApplicationType(req.ApplicationType)
	if !declared {
		appType = typeForCategory(eligibility.Default())
		if appType == "" {
			metrics.IncSubmission(req.ApplicationType, metrics.ResultError)
			return nil, metering.ErrInvalidApplication
		}
	}

	referenceCode, err := s.allocator.Allocate(ctx, appType)
	if err != nil {
		metrics.IncSubmission(string(appType), metrics.ResultError)
		return nil, err
	}

	app, err := metering.NewApplication(referenceCode, req.ApplicantID, appType, capacity, s.now())
	if err != nil {
		metrics.IncSubmission(string(appType), metrics.ResultError)
		return nil, err
	}
	app.ConsumptionUnits = req.ConsumptionUnits
	app.PropertyType = req.PropertyType
	app.PropertyAddress = req.PropertyAddress
	if req.Ownership != "" {
		app.Ownership = metering.OwnershipType(req.Ownership)
	}
	app.NOCMessage = req.NOCMessage
	app.EstimatedCost = capacity * s.calculator.Parameters().CostPerKw
	if err := app.ValidateIntake(); err != nil {
		metrics.IncSubmission(string(appType), metrics.ResultError)
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		metrics.IncSubmission(string(appType), metrics.ResultError)
		return nil, err
	}
	metrics.IncSubmission(string(appType), metrics.ResultSuccess)

	s.publish(ctx, app.ReferenceCode, meteringevents.ApplicationSubmitted{
		EventID:             eventing.NewEventID(),
		ReferenceCode:       app.ReferenceCode,
		ApplicantID:         app.ApplicantID,
		ApplicationType:     string(app.Type),
		RequestedCapacityKw: app.RequestedCapacityKw,
		OccurredAt:          app.SubmittedAt,
	})
	return app, nil
}

// Transition applies one lifecycle transition. Transitions are reserved for
// reviewers; the repository serializes concurrent attempts per reference
// code.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*metering.Application, error) {
	start := s.now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveTransition(string(req.Transition), result, time.Since(start))
	}()

	if req.ReferenceCode == "" {
		result = metrics.ResultError
		return nil, metering.ErrNotFound
	}
	if !auth.RoleAtLeast(req.ActorRole, auth.RoleReviewer) {
		result = metrics.ResultError
		return nil, metering.ErrForbiddenActor
	}

	var from metering.Status
	app, err := s.repo.Update(ctx, req.ReferenceCode, func(app *metering.Application) error {
		from = app.Status
		return app.Apply(req.Transition, req.Actor, string(req.ActorRole), req.Notes, s.now())
	})
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	s.publish(ctx, app.ReferenceCode, meteringevents.ApplicationStatusChanged{
		EventID:       eventing.NewEventID(),
		ReferenceCode: app.ReferenceCode,
		Transition:    string(req.Transition),
		FromStatus:    string(from),
		ToStatus:      string(app.Status),
		Actor:         req.Actor,
		OccurredAt:    app.LastUpdatedAt,
	})
	return app, nil
}

// Get loads a full application for the administrative surface.
func (s *Service) Get(ctx context.Context, referenceCode string) (*metering.Application, error) {
	if referenceCode == "" {
		return nil, metering.ErrNotFound
	}
	return s.repo.Get(ctx, referenceCode)
}

// List returns applications, optionally filtered by status.
func (s *Service) List(ctx context.Context, status metering.Status) ([]*metering.Application, error) {
	return s.repo.List(ctx, status)
}

// publish runs after the repository write has committed, so a subscriber
// failure is logged rather than failing the request.
func (s *Service) publish(ctx context.Context, referenceCode string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Printf("metering service: publish %s for %s: %v", eventing.EventType(event), referenceCode, err)
	}
}

func typeForCategory(category sizing.Category) metering.ApplicationType {
	switch category {
	case sizing.CategoryNetMetering:
		return metering.TypeNetMetering
	case sizing.CategoryGrossMetering:
		return metering.TypeGrossMetering
	case sizing.CategorySimpleSetup:
		return metering.TypeSimpleSetup
	default:
		return ""
	}
}
