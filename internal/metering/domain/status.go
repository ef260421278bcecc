package metering

// Status is the lifecycle state of a metering application.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusInstalled   Status = "installed"
	StatusCompleted   Status = "completed"
)

// Transition names a legal lifecycle operation.
type Transition string

const (
	TransitionBeginReview   Transition = "begin_review"
	TransitionApprove       Transition = "approve"
	TransitionReject        Transition = "reject"
	TransitionMarkInstalled Transition = "mark_installed"
	TransitionComplete      Transition = "complete"
)

// Edge describes one row of the transition table.
type Edge struct {
	From Status
	To   Status
}

// transitionTable is the closed set of legal edges. The state set is data,
// not code, so a different review workflow only needs a different table.
var transitionTable = map[Transition]Edge{
	TransitionBeginReview:   {From: StatusSubmitted, To: StatusUnderReview},
	TransitionApprove:       {From: StatusUnderReview, To: StatusApproved},
	TransitionReject:        {From: StatusUnderReview, To: StatusRejected},
	TransitionMarkInstalled: {From: StatusApproved, To: StatusInstalled},
	TransitionComplete:      {From: StatusInstalled, To: StatusCompleted},
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
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusInstalled, StatusCompleted:
		return Status(value), true
	default:
		return "", false
	}
}

// IsTerminal reports whether no edge leaves the status.
func (s Status) IsTerminal() bool {
	for _, edge := range transitionTable {
		if edge.From == s {
			return false
		}
	}
	return true
}

// TargetStatus returns the status a transition leads to.
func (t Transition) TargetStatus() (Status, bool) {
	edge, ok := transitionTable[t]
	if !ok {
		return "", false
	}
	return edge.To, true
}
