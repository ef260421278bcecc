package events

import "time"

// ApplicationSubmitted is published when a new application enters the
// lifecycle.
type ApplicationSubmitted struct {
	EventID             string    `json:"event_id"`
	ReferenceCode       string    `json:"reference_code"`
	ApplicantID         string    `json:"applicant_id"`
	ApplicationType     string    `json:"application_type"`
	RequestedCapacityKw float64   `json:"requested_capacity_kw"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// ApplicationStatusChanged is published after every successful lifecycle
// transition.
type ApplicationStatusChanged struct {
	EventID       string    `json:"event_id"`
	ReferenceCode string    `json:"reference_code"`
	Transition    string    `json:"transition"`
	FromStatus    string    `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}
