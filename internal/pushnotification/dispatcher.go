package pushnotification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prismhq/prism/internal/eventbus"
	"github.com/prismhq/prism/pkg/shellscan"
)

// Dispatcher turns gate events into user-facing pushes: red-tier
// approval requests, yellow-tier execution notices, and the 80% budget
// warning.
type Dispatcher struct {
	eventBus *eventbus.Bus
	sender   *Sender
}

func NewDispatcher(eventBus *eventbus.Bus, sender *Sender) *Dispatcher {
	return &Dispatcher{
		eventBus: eventBus,
		sender:   sender,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("push notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("push notification dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			d.handle(ctx, event)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event *eventbus.Event) {
	switch event.Type {
	case eventbus.EventTypeApprovalRequested:
		body := event.Payload
		if cmd, ok := event.Metadata["command"]; ok {
			body = shellscan.Normalize(cmd)
		}
		d.sender.SendToAll(ctx, &NotificationPayload{
			Title: fmt.Sprintf("Approval Required: %s", event.Metadata["action_type"]),
			Body:  body,
			URL:   fmt.Sprintf("/approvals/%s", event.ResourceID),
			Tag:   event.ResourceID,
		})

	case eventbus.EventTypeActionNotify:
		d.sender.SendToAll(ctx, &NotificationPayload{
			Title: fmt.Sprintf("Action Executed: %s", event.ResourceID),
			Body:  event.Payload,
			Tag:   event.ID,
		})

	case eventbus.EventTypeBudgetWarning:
		d.sender.SendToAll(ctx, &NotificationPayload{
			Title: "Budget Warning",
			Body:  fmt.Sprintf("80%% of the daily budget is used (%s)", event.Payload),
			Tag:   "budget-" + event.ResourceID,
		})
	}
}
