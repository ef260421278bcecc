package application

import (
	"context"
	"errors"
	"time"

	"solar-portal/internal/auth"
	"solar-portal/internal/eventing"
	maintenance "solar-portal/internal/maintenance/domain"
	"solar-portal/internal/observability/metrics"
)

// SubmitRequest carries the intake form for a maintenance request.
type SubmitRequest struct {
	RequesterID      string  `json:"requester_id"`
	RequestType      string  `json:"request_type"`
	SystemCapacityKw float64 `json:"system_capacity_kw"`
	IssueDescription string  `json:"issue_description"`
	PreferredDate    string  `json:"preferred_date"`
}

// TransitionRequest asks for one lifecycle transition on a request.
type TransitionRequest struct {
	ID         string
	Transition maintenance.Transition
	ActorRole  auth.Role
	Notes      string
}

// Service drives the maintenance request lifecycle.
type Service struct {
	repo  maintenance.Repository
	newID func() string
	now   func() time.Time
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

// WithIDGenerator overrides the id source.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService constructs the maintenance service.
func NewService(repo maintenance.Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("maintenance service: nil repo")
	}
	s := &Service{
		repo:  repo,
		newID: eventing.NewEventID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit records a new pending maintenance request.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*maintenance.Request, error) {
	requestType, ok := maintenance.ParseRequestType(req.RequestType)
	if !ok {
		metrics.IncMaintenanceRequest(req.RequestType, metrics.ResultError)
		return nil, maintenance.ErrInvalidRequest
	}
	request, err := maintenance.NewRequest(s.newID(), req.RequesterID, requestType, req.IssueDescription, s.now())
	if err != nil {
		metrics.IncMaintenanceRequest(string(requestType), metrics.ResultError)
		return nil, err
	}
	request.SystemCapacityKw = req.SystemCapacityKw
	if req.PreferredDate != "" {
		preferred, err := time.Parse("2006-01-02", req.PreferredDate)
		if err != nil {
			metrics.IncMaintenanceRequest(string(requestType), metrics.ResultError)
			return nil, maintenance.ErrInvalidRequest
		}
		request.PreferredDate = preferred
	}
	if err := s.repo.Create(ctx, request); err != nil {
		metrics.IncMaintenanceRequest(string(requestType), metrics.ResultError)
		return nil, err
	}
	metrics.IncMaintenanceRequest(string(requestType), metrics.ResultSuccess)
	return request, nil
}

// Transition applies one lifecycle transition. Transitions are reserved for
// reviewers.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*maintenance.Request, error) {
	if req.ID == "" {
		return nil, maintenance.ErrNotFound
	}
	if !auth.RoleAtLeast(req.ActorRole, auth.RoleReviewer) {
		return nil, maintenance.ErrForbiddenActor
	}
	return s.repo.Update(ctx, req.ID, func(request *maintenance.Request) error {
		return request.Apply(req.Transition, req.Notes, s.now())
	})
}

// Get loads a request by id.
func (s *Service) Get(ctx context.Context, id string) (*maintenance.Request, error) {
	if id == "" {
		return nil, maintenance.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// List returns requests, optionally filtered by status.
func (s *Service) List(ctx context.Context, status maintenance.Status) ([]*maintenance.Request, error) {
	return s.repo.List(ctx, status)
}
