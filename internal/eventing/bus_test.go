package eventing

import (
	"context"
	"errors"
	"testing"
	"time"
)

type orderPlaced struct {
	ReferenceCode string
	OccurredAt    time.Time
}

func TestInMemoryBus_DeliversToSubscribers(t *testing.T) {
	bus := NewInMemoryBus()

	delivered := 0
	bus.Subscribe(EventTypeOf[orderPlaced](), func(ctx context.Context, event any) error {
		delivered++
		return nil
	})
	bus.Subscribe(EventTypeOf[orderPlaced](), func(ctx context.Context, event any) error {
		delivered++
		return nil
	})

	if err := bus.Publish(context.Background(), orderPlaced{ReferenceCode: "NET-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("expected 2 deliveries, got %d", delivered)
	}
}

func TestInMemoryBus_NilEvent(t *testing.T) {
	bus := NewInMemoryBus()
	if err := bus.Publish(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected ErrNilEvent, got %v", err)
	}
}

func TestInMemoryBus_HandlerErrorSurfaces(t *testing.T) {
	bus := NewInMemoryBus()
	boom := errors.New("handler down")
	bus.Subscribe(EventTypeOf[orderPlaced](), func(ctx context.Context, event any) error {
		return boom
	})
	delivered := false
	bus.Subscribe(EventTypeOf[orderPlaced](), func(ctx context.Context, event any) error {
		delivered = true
		return nil
	})

	err := bus.Publish(context.Background(), orderPlaced{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if !delivered {
		t.Fatal("remaining handlers must still run")
	}
}

func TestPublisher_StampsEnvelope(t *testing.T) {
	bus := NewInMemoryBus()
	publisher := NewPublisher(bus)

	occurred := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	var seen Envelope
	bus.Subscribe(EventTypeOf[orderPlaced](), func(ctx context.Context, event any) error {
		env, ok := EnvelopeFromContext(ctx)
		if !ok {
			return errors.New("missing envelope")
		}
		seen = env
		return nil
	})

	if err := publisher.Publish(context.Background(), orderPlaced{ReferenceCode: "NET-1", OccurredAt: occurred}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if seen.EventID == "" {
		t.Fatal("expected a minted event id")
	}
	if seen.ReferenceCode != "NET-1" {
		t.Fatalf("expected reference code from the event, got %q", seen.ReferenceCode)
	}
	if !seen.OccurredAt.Equal(occurred) {
		t.Fatalf("expected occurred-at from the event, got %v", seen.OccurredAt)
	}
	if seen.EventType != EventTypeOf[orderPlaced]() {
		t.Fatalf("unexpected event type %q", seen.EventType)
	}
}

func TestNewEventID_UniqueAndHex(t *testing.T) {
	first := NewEventID()
	second := NewEventID()
	if len(first) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatal("ids must not repeat")
	}
}
