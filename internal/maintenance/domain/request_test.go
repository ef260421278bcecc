package maintenance

import (
	"errors"
	"testing"
	"time"
)

var testTime = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func newTestRequest(t *testing.T) *Request {
	t.Helper()
	request, err := NewRequest("req-1", "customer-1", TypeCleaning, "panels covered in dust", testTime)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return request
}

func TestNewRequest_Validation(t *testing.T) {
	if _, err := NewRequest("", "customer-1", TypeRepair, "inverter fault", testTime); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing id should be invalid, got %v", err)
	}
	if _, err := NewRequest("req-1", "customer-1", RequestType("painting"), "walls", testTime); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("unknown type should be invalid, got %v", err)
	}
	if _, err := NewRequest("req-1", "customer-1", TypeRepair, "   ", testTime); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("blank description should be invalid, got %v", err)
	}
}

func TestApply_HappyPath(t *testing.T) {
	request := newTestRequest(t)

	steps := []struct {
		transition Transition
		want       Status
	}{
		{TransitionSchedule, StatusScheduled},
		{TransitionStart, StatusInProgress},
		{TransitionComplete, StatusCompleted},
	}
	for _, step := range steps {
		if err := request.Apply(step.transition, "", testTime); err != nil {
			t.Fatalf("apply %s: %v", step.transition, err)
		}
		if request.Status != step.want {
			t.Fatalf("after %s expected %s, got %s", step.transition, step.want, request.Status)
		}
	}
}

func TestApply_CancelFromPendingAndScheduled(t *testing.T) {
	request := newTestRequest(t)
	if err := request.Apply(TransitionCancel, "customer changed mind", testTime); err != nil {
		t.Fatalf("cancel from pending: %v", err)
	}
	if request.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", request.Status)
	}

	request = newTestRequest(t)
	if err := request.Apply(TransitionSchedule, "", testTime); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := request.Apply(TransitionCancel, "", testTime); err != nil {
		t.Fatalf("cancel from scheduled: %v", err)
	}
}

func TestApply_CancelNotAllowedInProgress(t *testing.T) {
	request := newTestRequest(t)
	if err := request.Apply(TransitionSchedule, "", testTime); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := request.Apply(TransitionStart, "", testTime); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := request.Apply(TransitionCancel, "", testTime); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel in progress: expected ErrInvalidTransition, got %v", err)
	}
	if request.Status != StatusInProgress {
		t.Fatalf("status changed on failed cancel: %s", request.Status)
	}
}

func TestApply_CompletedIsTerminal(t *testing.T) {
	request := newTestRequest(t)
	for _, transition := range []Transition{TransitionSchedule, TransitionStart, TransitionComplete} {
		if err := request.Apply(transition, "", testTime); err != nil {
			t.Fatalf("apply %s: %v", transition, err)
		}
	}
	for _, transition := range []Transition{TransitionSchedule, TransitionStart, TransitionComplete, TransitionCancel} {
		if err := request.Apply(transition, "", testTime); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("transition %s from completed: expected ErrInvalidTransition, got %v", transition, err)
		}
	}
}

func TestApply_NotesRecorded(t *testing.T) {
	request := newTestRequest(t)
	if err := request.Apply(TransitionSchedule, "crew booked for tuesday", testTime); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if request.AdminNotes != "crew booked for tuesday" {
		t.Fatalf("expected notes recorded, got %q", request.AdminNotes)
	}
}
