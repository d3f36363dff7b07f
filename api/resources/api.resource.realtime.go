// FilePath: api/resources/api.resource.realtime.go
package resources

import (
	"fmt"
	"net/http"
	"time"

	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/hubservice"
	"github.com/gorilla/websocket"
	nuts "github.com/vaudience/go-nuts"
)

const (
	sseHeartbeatInterval = 30 * time.Second
	wsWriteTimeout       = 10 * time.Second
)

// RealtimeHandlers owns the long-lived subscriber connections: the SSE
// stream and the WebSocket endpoint. Both are broadcast channels; every
// connected client sees every update regardless of device.
type RealtimeHandlers struct {
	hubservice *hubservice.HubService
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Device dashboards are served from arbitrary origins, CORS is handled
	// at the router level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Realtime event stream
// @Description Server-Sent-Events stream of analog and image updates
// @Tags realtime
// @Produce text/event-stream
// @Success 200 {string} string
// @Router /realtime [get]
func (h *RealtimeHandlers) StreamSSE(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, errors.NewInternalError("streaming unsupported", nil).WithRequestID(requestID))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.hubservice.Hub.Register()
	defer h.hubservice.Hub.Unregister(sub)

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			// Client went away; the deferred unregister cleans up.
			return
		case msg, open := <-sub.C:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, msg.Data); err != nil {
				nuts.L.Debugf("[Realtime] SSE write to %s failed: %v", sub.ID, err)
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			// Comment line keeps intermediaries from timing the stream out
			// and surfaces dead connections as write errors.
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// @Summary Realtime websocket
// @Description WebSocket endpoint pushing JSON-encoded update messages
// @Tags realtime
// @Success 101 {string} string
// @Router /ws [get]
func (h *RealtimeHandlers) StreamWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		nuts.L.Warnf("[Realtime] WebSocket upgrade failed: %v", err)
		return
	}

	sub := h.hubservice.Hub.Register()

	// Read pump: inbound messages are not part of the protocol, but reading
	// is what surfaces the close/error signal for prompt cleanup.
	go func() {
		defer func() {
			h.hubservice.Hub.Unregister(sub)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				nuts.L.Debugf("[Realtime] WebSocket %s closed: %v", sub.ID, err)
				return
			}
		}
	}()

	// Write pump: runs until the hub closes the channel (unregister or
	// stalled-subscriber drop).
	go func() {
		defer conn.Close()
		for msg := range sub.C {
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				nuts.L.Debugf("[Realtime] WebSocket write to %s failed: %v", sub.ID, err)
				h.hubservice.Hub.Unregister(sub)
				return
			}
		}
	}()
}
