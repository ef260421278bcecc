package metering

import "errors"

var (
	// ErrNotFound is returned when no application exists for a reference code.
	ErrNotFound = errors.New("metering: application not found")
	// ErrInvalidTransition is returned when a transition is attempted from a
	// state that has no edge to the target.
	ErrInvalidTransition = errors.New("metering: invalid transition")
	// ErrConflict is returned when a concurrent transition on the same
	// reference code won the race.
	ErrConflict = errors.New("metering: concurrent transition conflict")
	// ErrAllocationExhausted is returned when reference allocation could not
	// find a unique code within the retry bound.
	ErrAllocationExhausted = errors.New("metering: reference allocation exhausted")
	// ErrAlreadyExists is returned when creating an application under a
	// reference code that is already tracked.
	ErrAlreadyExists = errors.New("metering: reference code already exists")
	// ErrInvalidApplication is returned when submitted application data fails
	// validation.
	ErrInvalidApplication = errors.New("metering: invalid application")
	// ErrForbiddenActor is returned when the actor role may not perform the
	// requested transition.
	ErrForbiddenActor = errors.New("metering: actor not allowed")
)
