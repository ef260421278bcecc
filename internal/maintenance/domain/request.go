package maintenance

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned for unknown request ids.
	ErrNotFound = errors.New("maintenance: request not found")
	// ErrInvalidTransition is returned for illegal status edges.
	ErrInvalidTransition = errors.New("maintenance: invalid transition")
	// ErrInvalidRequest is returned when intake validation fails.
	ErrInvalidRequest = errors.New("maintenance: invalid request")
	// ErrForbiddenActor is returned when the caller's role may not transition.
	ErrForbiddenActor = errors.New("maintenance: actor not allowed")
)

// RequestType names the kind of service work requested.
type RequestType string

const (
	TypeCleaning   RequestType = "cleaning"
	TypeRepair     RequestType = "repair"
	TypeInspection RequestType = "inspection"
	TypeUpgrade    RequestType = "upgrade"
)

// ParseRequestType validates a request type value.
func ParseRequestType(value string) (RequestType, bool) {
	switch RequestType(value) {
	case TypeCleaning, TypeRepair, TypeInspection, TypeUpgrade:
		return RequestType(value), true
	default:
		return "", false
	}
}

// Status is the lifecycle state of a maintenance request.
type Status string

const (
	StatusPending    Status = "pending"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Transition names a lifecycle operation.
type Transition string

const (
	TransitionSchedule Transition = "schedule"
	TransitionStart    Transition = "start"
	TransitionComplete Transition = "complete"
	TransitionCancel   Transition = "cancel"
)

type edge struct {
	from Status
	to   Status
}

var transitionTable = map[Transition][]edge{
	TransitionSchedule: {{from: StatusPending, to: StatusScheduled}},
	TransitionStart:    {{from: StatusScheduled, to: StatusInProgress}},
	TransitionComplete: {{from: StatusInProgress, to: StatusCompleted}},
	TransitionCancel: {
		{from: StatusPending, to: StatusCancelled},
		{from: StatusScheduled, to: StatusCancelled},
	},
}

// ParseTransition validates a transition name.
func ParseTransition(value string) (Transition, bool) {
	t := Transition(value)
	if _, ok := transitionTable[t]; !ok {
		return "", false
	}
	return t, true
}

// ParseStatus validates a status value.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(value), true
	default:
		return "", false
	}
}

// Request is a maintenance service request.
type Request struct {
	ID               string
	RequesterID      string
	RequestType      RequestType
	SystemCapacityKw float64
	IssueDescription string
	PreferredDate    time.Time
	Status           Status
	AdminNotes       string
	CreatedAt        time.Time
	LastUpdatedAt    time.Time
}

// NewRequest creates a pending maintenance request.
func NewRequest(id, requesterID string, requestType RequestType, description string, now time.Time) (*Request, error) {
	if id == "" || requesterID == "" {
		return nil, ErrInvalidRequest
	}
	if _, ok := ParseRequestType(string(requestType)); !ok {
		return nil, ErrInvalidRequest
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrInvalidRequest
	}
	now = now.UTC()
	return &Request{
		ID:               id,
		RequesterID:      requesterID,
		RequestType:      requestType,
		IssueDescription: description,
		Status:           StatusPending,
		CreatedAt:        now,
		LastUpdatedAt:    now,
	}, nil
}

// Apply moves the request along one legal edge; illegal edges leave the
// request untouched.
func (r *Request) Apply(transition Transition, notes string, now time.Time) error {
	edges, ok := transitionTable[transition]
	if !ok {
		return ErrInvalidTransition
	}
	for _, e := range edges {
		if e.from == r.Status {
			r.Status = e.to
			r.LastUpdatedAt = now.UTC()
			if notes != "" {
				r.AdminNotes = notes
			}
			return nil
		}
	}
	return ErrInvalidTransition
}

// Clone returns a detached copy.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	copy := *r
	return &copy
}
