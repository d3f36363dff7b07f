// FilePath: internal/realtime/dispatcher.go
package realtime

import (
	"context"
	"encoding/json"

	"github.com/espview/hub/internal/models"
	"github.com/espview/hub/internal/state"
	nuts "github.com/vaudience/go-nuts"
)

// PushSender delivers a payload to a single push subscription, best effort.
type PushSender interface {
	Send(ctx context.Context, sub *models.PushSubscription, msg models.PushMessage) error
}

// PushSubscriptionFinder is the dispatch read path into the durable push
// subscription registry.
type PushSubscriptionFinder interface {
	FindByDevice(ctx context.Context, deviceID string) ([]*models.PushSubscription, error)
}

// Dispatcher applies update events to the device state store and fans them
// out to all live broadcast subscribers, plus a best-effort web push for
// events that represent new device data.
type Dispatcher struct {
	state  *state.Store
	hub    *Hub
	push   PushSender
	pushes PushSubscriptionFinder
	events *nuts.EventEmitter
}

// NewDispatcher wires the dispatcher to its collaborators. push and pushes
// may be nil, which disables the push path entirely.
func NewDispatcher(st *state.Store, hub *Hub, push PushSender, pushes PushSubscriptionFinder) *Dispatcher {
	return &Dispatcher{
		state:  st,
		hub:    hub,
		push:   push,
		pushes: pushes,
		events: nuts.NewEventEmitter(),
	}
}

// PushEnabled reports whether the out-of-band push path is wired.
func (d *Dispatcher) PushEnabled() bool {
	return d.push != nil && d.pushes != nil
}

// OnPushFailure registers a handler fired whenever a push send fails.
func (d *Dispatcher) OnPushFailure(handler func(deviceID string)) {
	d.events.On("push.failed", "monitoring_handler", func(id string) {
		handler(id)
	})
}

// Dispatch applies the event to the state store and broadcasts it to every
// connected subscriber. Image events additionally trigger a fire-and-forget
// push notification to the device's registered push endpoint.
//
// Dispatch never returns an error: delivery problems are logged and dropped
// so ingestion responses are never blocked or failed by a dead subscriber.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.UpdateEvent) {
	switch event.Event {
	case models.EventAnalog:
		if event.Value != nil {
			d.state.SetAnalog(event.DeviceID, *event.Value)
		}
	case models.EventImage:
		d.state.SetImageRef(event.DeviceID, event.URL)
	default:
		nuts.L.Warnf("[Dispatcher] Unknown event kind %q for device %s", event.Event, event.DeviceID)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		nuts.L.Errorf("[Dispatcher] Failed to marshal %s event for device %s: %v", event.Event, event.DeviceID, err)
		return
	}
	d.hub.Publish(Message{Event: event.Event, Data: payload})

	// Only new-data events wake up the out-of-band push path.
	if event.Event == models.EventImage {
		d.NotifyDevice(ctx, event.DeviceID, models.PushMessage{
			Title:   "New data",
			Message: "Device " + event.DeviceID + " uploaded a new image",
		})
	}
}

// NotifyDevice fires a push notification to every subscription registered
// for the device. Sends run detached; failures are logged and never reach
// the caller.
func (d *Dispatcher) NotifyDevice(ctx context.Context, deviceID string, msg models.PushMessage) {
	if !d.PushEnabled() {
		return
	}

	subs, err := d.pushes.FindByDevice(ctx, deviceID)
	if err != nil {
		nuts.L.Errorf("[Dispatcher] Failed to look up push subscriptions for device %s: %v", deviceID, err)
		return
	}

	for _, sub := range subs {
		sub := sub
		go func() {
			// Detached from the request context on purpose: the ingestion
			// response must not wait for, or be cancelled with, the push.
			if err := d.push.Send(context.Background(), sub, msg); err != nil {
				nuts.L.Warnf("[Dispatcher] Push to %s for device %s failed: %v", sub.Endpoint, deviceID, err)
				d.events.Emit("push.failed", deviceID)
			}
		}()
	}
}
