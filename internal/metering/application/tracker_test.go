package application

import (
	"context"
	"errors"
	"testing"

	"solar-portal/internal/auth"
	metering "solar-portal/internal/metering/domain"
)

func TestLookup_ReturnsCustomerSnapshot(t *testing.T) {
	service, repo := newTestService(t, nil)
	tracker, err := NewStatusTracker(repo)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	app, err := service.Submit(context.Background(), ownerSubmit())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	snapshot, err := tracker.Lookup(context.Background(), app.ReferenceCode)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if snapshot.ReferenceCode != app.ReferenceCode {
		t.Fatalf("expected %s, got %s", app.ReferenceCode, snapshot.ReferenceCode)
	}
	if snapshot.Status != "submitted" {
		t.Fatalf("expected submitted, got %s", snapshot.Status)
	}
}

func TestLookup_IdempotentWithoutTransition(t *testing.T) {
	service, repo := newTestService(t, nil)
	tracker, err := NewStatusTracker(repo)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	app, err := service.Submit(context.Background(), ownerSubmit())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, err := tracker.Lookup(context.Background(), app.ReferenceCode)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := tracker.Lookup(context.Background(), app.ReferenceCode)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if first != second {
		t.Fatalf("lookups differ: %+v vs %+v", first, second)
	}
}

func TestLookup_ReflectsTransitions(t *testing.T) {
	service, repo := newTestService(t, nil)
	tracker, err := NewStatusTracker(repo)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	app, err := service.Submit(context.Background(), ownerSubmit())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := service.Transition(context.Background(), TransitionRequest{
		ReferenceCode: app.ReferenceCode,
		Transition:    metering.TransitionBeginReview,
		Actor:         "reviewer-1",
		ActorRole:     auth.RoleReviewer,
	}); err != nil {
		t.Fatalf("transition: %v", err)
	}

	snapshot, err := tracker.Lookup(context.Background(), app.ReferenceCode)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if snapshot.Status != "under_review" {
		t.Fatalf("expected under_review, got %s", snapshot.Status)
	}
}

func TestLookup_UnknownReference(t *testing.T) {
	_, repo := newTestService(t, nil)
	tracker, err := NewStatusTracker(repo)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	if _, err := tracker.Lookup(context.Background(), "NET-20260830-ZZZZZ"); !errors.Is(err, metering.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := tracker.Lookup(context.Background(), ""); !errors.Is(err, metering.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty code, got %v", err)
	}
}
