package notify

import (
	"context"
	"errors"
	"time"

	meteringevents "solar-portal/internal/metering/application/events"
)

// StatusNotifier delivers a webhook message for every application status
// change, so an external CRM or messaging bridge can reach the customer.
type StatusNotifier struct {
	channel  Channel
	template *Template
}

// NewStatusNotifier constructs a notifier.
func NewStatusNotifier(channel Channel, template *Template) (*StatusNotifier, error) {
	if channel == nil {
		return nil, errors.New("status notifier: nil channel")
	}
	if template == nil {
		return nil, errors.New("status notifier: nil template")
	}
	return &StatusNotifier{channel: channel, template: template}, nil
}

// HandleStatusChanged renders and delivers a notification for the event.
func (n *StatusNotifier) HandleStatusChanged(ctx context.Context, event any) error {
	evt, ok := event.(meteringevents.ApplicationStatusChanged)
	if !ok {
		return errors.New("status notifier: unexpected event type")
	}
	content, err := n.template.Render(TemplateData{
		ReferenceCode: evt.ReferenceCode,
		Transition:    evt.Transition,
		FromStatus:    evt.FromStatus,
		ToStatus:      evt.ToStatus,
		UpdatedAt:     evt.OccurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return n.channel.Send(ctx, evt.ReferenceCode, content)
}
