// FilePath: internal/models/models.device.go
package models

import "time"

// DeviceState is the in-memory latest-known snapshot for a single device.
// Fields are pointers so "never reported" stays distinguishable from a
// reported zero value.
type DeviceState struct {
	DeviceID      string    `json:"device_id"`
	AnalogValue   *float64  `json:"analog_value,omitempty"`
	ImageRef      *string   `json:"image_ref,omitempty"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// DeviceData is a persisted telemetry record. Exactly one of Image or
// AnalogValue is set, according to Kind.
type DeviceData struct {
	ID          string    `json:"id" db:"id"`
	DeviceID    string    `json:"device_id" db:"device_id"`
	Kind        string    `json:"kind" db:"kind"` // "image" or "analog"
	Image       []byte    `json:"image,omitempty" db:"image"`
	AnalogValue *float64  `json:"analog_value,omitempty" db:"analog_value"`
	MimeType    string    `json:"mime_type,omitempty" db:"mime_type"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}

const (
	DataKindImage  = "image"
	DataKindAnalog = "analog"
)

// DeviceImage is the API shape for image history responses, the image
// payload base64-encoded by the JSON marshaller.
type DeviceImage struct {
	Image     []byte    `json:"image"`
	Timestamp time.Time `json:"timestamp"`
}
