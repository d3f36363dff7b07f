// FilePath: internal/realtime/hub.go
package realtime

import (
	"sync"

	nuts "github.com/vaudience/go-nuts"
)

// subscriberBuffer is the number of pending messages a subscriber may fall
// behind before it is considered dead and dropped.
const subscriberBuffer = 64

// Message is a single serialized update ready for delivery. Event carries
// the SSE event name; Data the JSON payload.
type Message struct {
	Event string
	Data  []byte
}

// Subscriber is a live broadcast client registered with the Hub. Updates
// arrive on C until Unregister is called or the hub drops the subscriber.
type Subscriber struct {
	ID string
	C  chan Message
}

// Hub is the broadcast subscriber registry. Every registered subscriber
// receives every published message regardless of device. All methods are
// safe for concurrent use.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	events      *nuts.EventEmitter
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		events:      nuts.NewEventEmitter(),
	}
}

// OnSubscriberEvent registers a handler for subscriber lifecycle events.
// kind is "registered", "unregistered" or "dropped".
func (h *Hub) OnSubscriberEvent(handler func(kind, subscriberID string)) {
	h.events.On("hub.subscriber", "monitoring_handler", func(kind, id string) {
		handler(kind, id)
	})
}

// Register adds a new broadcast subscriber. The subscriber sees every
// message published after registration.
func (h *Hub) Register() *Subscriber {
	sub := &Subscriber{
		ID: nuts.NID("sub", 12),
		C:  make(chan Message, subscriberBuffer),
	}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	count := len(h.subscribers)
	h.mu.Unlock()

	nuts.L.Infof("[Hub] Subscriber %s registered (%d connected)", sub.ID, count)
	h.events.Emit("hub.subscriber", "registered", sub.ID)
	return sub
}

// Unregister removes a subscriber and closes its channel. Safe to call more
// than once and concurrently with an in-flight Publish.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
		close(sub.C)
	}
	count := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		nuts.L.Infof("[Hub] Subscriber %s unregistered (%d connected)", sub.ID, count)
		h.events.Emit("hub.subscriber", "unregistered", sub.ID)
	}
}

// Count returns the number of currently registered subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Publish delivers a message to every registered subscriber. Sends are
// non-blocking channel writes, so the registry lock is only ever held for a
// handful of buffer pushes, never for network I/O. A subscriber that cannot
// keep up is dropped so one slow connection never stalls delivery to the
// rest. Publish never fails.
func (h *Hub) Publish(msg Message) {
	var dropped []string

	h.mu.Lock()
	for sub := range h.subscribers {
		select {
		case sub.C <- msg:
		default:
			delete(h.subscribers, sub)
			close(sub.C)
			dropped = append(dropped, sub.ID)
		}
	}
	h.mu.Unlock()

	// Emitted outside the lock so event handlers may call back into the hub.
	for _, id := range dropped {
		nuts.L.Warnf("[Hub] Dropping stalled subscriber %s", id)
		h.events.Emit("hub.subscriber", "dropped", id)
	}
}
