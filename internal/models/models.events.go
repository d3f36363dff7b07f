// FilePath: internal/models/models.events.go
package models

// Event names used on the realtime streams. SSE clients see them as named
// events, websocket clients inside the JSON payload.
const (
	EventAnalog = "analog"
	EventImage  = "image"
)

// UpdateEvent is a transient notification produced by the ingestion
// endpoints and consumed exactly once by the dispatcher. It is never queued
// or persisted.
type UpdateEvent struct {
	Event    string `json:"event"` // EventAnalog or EventImage
	DeviceID string `json:"deviceId"`

	// Value is set for analog events. A pointer so a legitimate zero sample
	// still serializes.
	Value *float64 `json:"value,omitempty"`
	// URL references the stored image for image events.
	URL string `json:"url,omitempty"`
}

// AnalogUpdate builds the update event for a fresh analog sample.
func AnalogUpdate(deviceID string, value float64) UpdateEvent {
	return UpdateEvent{Event: EventAnalog, DeviceID: deviceID, Value: &value}
}

// ImageUpdate builds the update event for a freshly stored image.
func ImageUpdate(deviceID, url string) UpdateEvent {
	return UpdateEvent{Event: EventImage, DeviceID: deviceID, URL: url}
}
