package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/espview/hub/internal/models"
	"github.com/espview/hub/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePushSender struct {
	mu    sync.Mutex
	sent  []models.PushMessage
	fail  bool
	calls chan struct{}
}

func newFakePushSender() *fakePushSender {
	return &fakePushSender{calls: make(chan struct{}, 16)}
}

func (f *fakePushSender) Send(ctx context.Context, sub *models.PushSubscription, msg models.PushMessage) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	f.calls <- struct{}{}
	if f.fail {
		return errors.New("endpoint rejected")
	}
	return nil
}

func (f *fakePushSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeSubFinder struct {
	subs []*models.PushSubscription
	err  error
}

func (f *fakeSubFinder) FindByDevice(ctx context.Context, deviceID string) ([]*models.PushSubscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var matched []*models.PushSubscription
	for _, sub := range f.subs {
		if sub.DeviceID == deviceID {
			matched = append(matched, sub)
		}
	}
	return matched, nil
}

func waitForCall(t *testing.T, sender *fakePushSender) {
	t.Helper()
	select {
	case <-sender.calls:
	case <-time.After(time.Second):
		t.Fatal("expected a push send")
	}
}

func TestDispatchAnalogUpdatesStateAndBroadcasts(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	dispatcher := NewDispatcher(store, hub, nil, nil)

	sub := hub.Register()
	defer hub.Unregister(sub)

	dispatcher.Dispatch(context.Background(), models.AnalogUpdate("D1", 42))

	value, ok := store.Analog("D1")
	require.True(t, ok)
	assert.Equal(t, 42.0, value)

	msg := receiveOne(t, sub)
	assert.Equal(t, models.EventAnalog, msg.Event)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, "analog", payload["event"])
	assert.Equal(t, "D1", payload["deviceId"])
	assert.Equal(t, 42.0, payload["value"])
}

func TestDispatchImageBroadcastsAndPushes(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	sender := newFakePushSender()
	finder := &fakeSubFinder{subs: []*models.PushSubscription{
		{DeviceID: "D1", Endpoint: "https://push.example/abc"},
	}}
	dispatcher := NewDispatcher(store, hub, sender, finder)

	sub := hub.Register()
	defer hub.Unregister(sub)

	dispatcher.Dispatch(context.Background(), models.ImageUpdate("D1", "/api/v1/devices/D1/image/latest"))

	ref, ok := store.ImageRef("D1")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/devices/D1/image/latest", ref)

	msg := receiveOne(t, sub)
	assert.Equal(t, models.EventImage, msg.Event)

	waitForCall(t, sender)
	assert.Equal(t, 1, sender.sentCount())
}

func TestDispatchAnalogDoesNotPush(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	sender := newFakePushSender()
	finder := &fakeSubFinder{subs: []*models.PushSubscription{
		{DeviceID: "D1", Endpoint: "https://push.example/abc"},
	}}
	dispatcher := NewDispatcher(store, hub, sender, finder)

	dispatcher.Dispatch(context.Background(), models.AnalogUpdate("D1", 1))

	select {
	case <-sender.calls:
		t.Fatal("analog updates must not trigger push notifications")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPushFailureNeverReachesCaller(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	sender := newFakePushSender()
	sender.fail = true
	finder := &fakeSubFinder{subs: []*models.PushSubscription{
		{DeviceID: "D1", Endpoint: "https://push.example/abc"},
	}}
	dispatcher := NewDispatcher(store, hub, sender, finder)

	// Dispatch has no error return by design; the failing send must only
	// produce a log line.
	dispatcher.Dispatch(context.Background(), models.ImageUpdate("D1", "/ref"))
	waitForCall(t, sender)
}

func TestSubscriptionLookupFailureIsSwallowed(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	sender := newFakePushSender()
	finder := &fakeSubFinder{err: errors.New("db down")}
	dispatcher := NewDispatcher(store, hub, sender, finder)

	dispatcher.Dispatch(context.Background(), models.ImageUpdate("D1", "/ref"))
	assert.Equal(t, 0, sender.sentCount())
}

func TestPushEnabledRequiresSenderAndFinder(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()

	assert.False(t, NewDispatcher(store, hub, nil, nil).PushEnabled())
	assert.False(t, NewDispatcher(store, hub, newFakePushSender(), nil).PushEnabled())
	assert.True(t, NewDispatcher(store, hub, newFakePushSender(), &fakeSubFinder{}).PushEnabled())
}

func TestPushFailureEmitsMonitoringEvent(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	sender := newFakePushSender()
	sender.fail = true
	finder := &fakeSubFinder{subs: []*models.PushSubscription{
		{DeviceID: "D1", Endpoint: "https://push.example/abc"},
	}}
	dispatcher := NewDispatcher(store, hub, sender, finder)

	failures := make(chan string, 1)
	dispatcher.OnPushFailure(func(deviceID string) {
		failures <- deviceID
	})

	dispatcher.Dispatch(context.Background(), models.ImageUpdate("D1", "/ref"))

	select {
	case deviceID := <-failures:
		assert.Equal(t, "D1", deviceID)
	case <-time.After(time.Second):
		t.Fatal("expected a push failure event")
	}
}

func TestDeadSubscriberDoesNotStopDelivery(t *testing.T) {
	store := state.NewStore()
	hub := NewHub()
	dispatcher := NewDispatcher(store, hub, nil, nil)

	dead := hub.Register()
	alive := hub.Register()
	hub.Unregister(dead)

	dispatcher.Dispatch(context.Background(), models.AnalogUpdate("D1", 5))

	msg := receiveOne(t, alive)
	assert.Equal(t, models.EventAnalog, msg.Event)
	assert.Equal(t, 1, hub.Count())
}
