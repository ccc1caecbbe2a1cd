package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	id, events := bus.Subscribe(4)
	defer bus.Unsubscribe(id)

	bus.PublishNew(EventTypeApprovalRequested, "system_command_0", "needs review", map[string]string{
		"agent_name": "coder",
	})

	select {
	case e := <-events:
		assert.Equal(t, EventTypeApprovalRequested, e.Type)
		assert.Equal(t, "system_command_0", e.ResourceID)
		assert.Equal(t, "needs review", e.Payload)
		assert.Equal(t, "coder", e.Metadata["agent_name"])
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	default:
		t.Fatal("expected the published event")
	}
}

func TestBusFanOut(t *testing.T) {
	bus := New()
	idA, a := bus.Subscribe(1)
	idB, b := bus.Subscribe(1)
	defer bus.Unsubscribe(idA)
	defer bus.Unsubscribe(idB)

	bus.PublishNew(EventTypeBudgetWarning, "2026-03-14", "", nil)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, (<-a).ID, (<-b).ID)
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	bus := New()
	id, events := bus.Subscribe(1)
	defer bus.Unsubscribe(id)

	bus.PublishNew(EventTypeActionNotify, "create_file", "first", nil)
	// Buffer is full; this one is dropped instead of blocking the publisher.
	bus.PublishNew(EventTypeActionNotify, "create_file", "second", nil)

	require.Len(t, events, 1)
	assert.Equal(t, "first", (<-events).Payload)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	id, events := bus.Subscribe(1)

	bus.Unsubscribe(id)
	_, open := <-events
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.PublishNew(EventTypeActionNotify, "chat", "", nil)
}
