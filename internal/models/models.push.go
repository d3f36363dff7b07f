// FilePath: internal/models/models.push.go
package models

import "time"

// PushSubscription is a durable Web Push registration for one device.
// At most one subscription is retained per device; the first wins.
type PushSubscription struct {
	DeviceID  string    `json:"device_id" db:"device_id"`
	Endpoint  string    `json:"endpoint" db:"endpoint"`
	P256dh    string    `json:"p256dh" db:"p256dh"`
	Auth      string    `json:"auth" db:"auth"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PushMessage is the payload delivered to a push endpoint.
type PushMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
