package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishDeliversOncePerSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(EmployeeTopic("e-1"), RoleTopic("hr"))
	defer cleanup()

	hub.Publish(Event{Event: "notification", Data: "x"}, EmployeeTopic("e-1"), RoleTopic("hr"))

	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, "notification", ev.Event)
}

func TestHub_PublishIgnoresOtherTopics(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(EmployeeTopic("e-1"))
	defer cleanup()

	hub.Publish(Event{Event: "notification"}, EmployeeTopic("e-2"), RoleTopic("vp"))
	assert.Len(t, ch, 0)
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(RoleTopic("admin"))
	assert.Equal(t, 1, hub.SubscriberCount(RoleTopic("admin")))

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount(RoleTopic("admin")))
	_, open := <-ch
	assert.False(t, open)
}

func TestHub_FullChannelDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(RoleTopic("hr"))
	defer cleanup()

	for i := 0; i < 50; i++ {
		hub.Publish(Event{Event: "notification"}, RoleTopic("hr"))
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(EmployeeTopic("e-1"), RoleTopic("hr"))

	hub.Close()
	hub.Close()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount(RoleTopic("hr")))

	late, lateCleanup := hub.Subscribe(RoleTopic("hr"))
	defer lateCleanup()
	_, open = <-late
	assert.False(t, open)

	hub.Publish(Event{Event: "notification"}, RoleTopic("hr"))
}
