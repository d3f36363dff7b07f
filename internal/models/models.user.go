// FilePath: internal/models/models.user.go
package models

import "time"

// User is a registered account. Each account is bound to exactly one device.
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DeviceID     string    `json:"device_id" db:"device_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
