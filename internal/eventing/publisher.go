package eventing

import "context"

// Publisher wraps a bus and stamps each event with an envelope before
// delivery, so subscribers can read event id and correlation metadata from
// context.
type Publisher struct {
	bus EventBus
}

// NewPublisher constructs a publisher over a bus.
func NewPublisher(bus EventBus) *Publisher {
	return &Publisher{bus: bus}
}

// Publish builds an envelope for the event and dispatches it.
func (p *Publisher) Publish(ctx context.Context, event any) error {
	if p == nil || p.bus == nil {
		return nil
	}
	env, err := BuildEnvelope(event, MetaFromContext(ctx))
	if err != nil {
		return err
	}
	return p.bus.Publish(WithEnvelope(ctx, env), event)
}

// Subscribe delegates to the underlying bus.
func (p *Publisher) Subscribe(eventType string, handler EventHandler) {
	if p == nil || p.bus == nil {
		return
	}
	p.bus.Subscribe(eventType, handler)
}
