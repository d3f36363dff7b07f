package realtime

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveOne(t *testing.T, sub *Subscriber) Message {
	t.Helper()
	select {
	case msg, ok := <-sub.C:
		require.True(t, ok, "subscriber channel closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected a message")
		return Message{}
	}
}

func TestSubscriberReceivesAllMessagesInOrder(t *testing.T) {
	hub := NewHub()
	sub := hub.Register()
	defer hub.Unregister(sub)

	const n = 10
	for i := 0; i < n; i++ {
		hub.Publish(Message{Event: "analog", Data: []byte(fmt.Sprintf(`{"seq":%d}`, i))})
	}

	for i := 0; i < n; i++ {
		msg := receiveOne(t, sub)
		assert.Equal(t, fmt.Sprintf(`{"seq":%d}`, i), string(msg.Data))
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Register()

	hub.Unregister(sub)
	hub.Unregister(sub) // must not panic or double-close

	assert.Equal(t, 0, hub.Count())
}

func TestDisconnectedSubscriberReceivesNothingFurther(t *testing.T) {
	hub := NewHub()
	staying := hub.Register()
	leaving := hub.Register()

	hub.Publish(Message{Event: "analog", Data: []byte(`{"seq":0}`)})
	receiveOne(t, staying)
	receiveOne(t, leaving)

	hub.Unregister(leaving)
	hub.Publish(Message{Event: "analog", Data: []byte(`{"seq":1}`)})

	msg := receiveOne(t, staying)
	assert.Equal(t, `{"seq":1}`, string(msg.Data))

	_, open := <-leaving.C
	assert.False(t, open, "unregistered subscriber channel must be closed")
	assert.Equal(t, 1, hub.Count())
}

func TestStalledSubscriberIsDroppedNotBlocking(t *testing.T) {
	hub := NewHub()
	stalled := hub.Register()
	healthy := hub.Register()

	// Fill both buffers exactly, then drain only the healthy subscriber.
	for i := 0; i < subscriberBuffer; i++ {
		hub.Publish(Message{Event: "analog", Data: []byte(`{}`)})
	}
	require.Equal(t, 2, hub.Count())
	for i := 0; i < subscriberBuffer; i++ {
		receiveOne(t, healthy)
	}

	// The next publish finds the stalled buffer full and drops only that
	// subscriber.
	hub.Publish(Message{Event: "image", Data: []byte(`{"after":true}`)})
	assert.Equal(t, 1, hub.Count(), "stalled subscriber should have been dropped")

	msg := receiveOne(t, healthy)
	assert.Equal(t, `{"after":true}`, string(msg.Data))

	// The dropped subscriber still drains its backlog, then sees the close.
	for i := 0; i < subscriberBuffer; i++ {
		<-stalled.C
	}
	_, open := <-stalled.C
	assert.False(t, open)
}

type subscriberEvent struct {
	kind string
	id   string
}

func TestSubscriberLifecycleEventsAreEmitted(t *testing.T) {
	hub := NewHub()
	events := make(chan subscriberEvent, 16)
	hub.OnSubscriberEvent(func(kind, id string) {
		events <- subscriberEvent{kind: kind, id: id}
	})

	waitForEvent := func(kind string) subscriberEvent {
		t.Helper()
		select {
		case ev := <-events:
			require.Equal(t, kind, ev.kind)
			return ev
		case <-time.After(time.Second):
			t.Fatalf("expected %q event", kind)
			return subscriberEvent{}
		}
	}

	sub := hub.Register()
	ev := waitForEvent("registered")
	assert.Equal(t, sub.ID, ev.id)

	hub.Unregister(sub)
	ev = waitForEvent("unregistered")
	assert.Equal(t, sub.ID, ev.id)

	stalled := hub.Register()
	waitForEvent("registered")
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Publish(Message{Event: "analog", Data: []byte(`{}`)})
	}
	ev = waitForEvent("dropped")
	assert.Equal(t, stalled.ID, ev.id)
}
