package eventbus

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type EventType string

const (
	// EventTypeActionNotify signals a yellow-tier action executed; the UI
	// layer owes the user a notification.
	EventTypeActionNotify EventType = "action.notify"
	// EventTypeActionBlocked signals a denied or keyword-blocked action.
	EventTypeActionBlocked EventType = "action.blocked"
	// EventTypeApprovalRequested signals a red-tier action waiting on a
	// human decision.
	EventTypeApprovalRequested EventType = "approval.requested"
	// EventTypeApprovalResolved signals a pending action was approved or
	// denied.
	EventTypeApprovalResolved EventType = "approval.resolved"
	// EventTypeBudgetWarning signals daily spend crossed the 80% threshold.
	EventTypeBudgetWarning EventType = "budget.warning"
	// EventTypeBudgetRejected signals a paid call was refused admission.
	EventTypeBudgetRejected EventType = "budget.rejected"
	// EventTypeRulesChanged signals the rules file changed on disk; a
	// restart is required for it to take effect.
	EventTypeRulesChanged EventType = "rules.changed"
)

type Event struct {
	ID         string
	Type       EventType
	ResourceID string
	Payload    string
	Metadata   map[string]string
	CreatedAt  time.Time
}

// Bus is an in-process fan-out event bus. Publishing never blocks: when a
// subscriber's buffer is full the event is dropped for that subscriber.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan *Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// buffer full, drop event for this subscriber
		}
	}
}

func (b *Bus) PublishNew(eventType EventType, resourceID string, payload string, metadata map[string]string) {
	b.Publish(&Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Payload:    payload,
		Metadata:   metadata,
		CreatedAt:  time.Now(),
	})
}
