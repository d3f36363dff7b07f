// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/models"
)

// DeviceDataRepository is the durable record of uploaded device telemetry
type DeviceDataRepository interface {
	database.Repository
	Insert(ctx context.Context, data *models.DeviceData) error
	ListImagesByDevice(ctx context.Context, deviceID string, limit int) ([]*models.DeviceData, error)
	LatestImageByDevice(ctx context.Context, deviceID string) (*models.DeviceData, error)
	LatestAnalogByDevice(ctx context.Context, deviceID string) (*models.DeviceData, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// PushSubscriptionRepository stores Web Push registrations, at most one per
// device (the first subscribe wins)
type PushSubscriptionRepository interface {
	database.Repository
	Upsert(ctx context.Context, sub *models.PushSubscription) (created bool, err error)
	FindByDevice(ctx context.Context, deviceID string) ([]*models.PushSubscription, error)
	DeleteByDevice(ctx context.Context, deviceID string) error
}

// UserRepository defines the interface for account operations
type UserRepository interface {
	database.Repository
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*models.User, error)
}
