// FilePath: internal/repository/postgres/postgres.push_subscription.go
package postgres

import (
	"context"

	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/models"
)

type PushSubscriptionRepo struct {
	PostgresBaseRepo
}

func NewPushSubscriptionRepository(db database.DB) *PushSubscriptionRepo {
	repo := &PostgresBaseRepo{db: db}
	return &PushSubscriptionRepo{PostgresBaseRepo: *repo}
}

// Upsert inserts a subscription unless the device already has one. The
// ON CONFLICT clause makes the check-then-insert atomic under concurrent
// subscribes for the same device; the first subscription is retained.
func (r *PushSubscriptionRepo) Upsert(ctx context.Context, sub *models.PushSubscription) (bool, error) {
	query := `
		INSERT INTO push_subscriptions (
			device_id, endpoint, p256dh, auth, created_at
		) VALUES (
			:device_id, :endpoint, :p256dh, :auth, :created_at
		) ON CONFLICT (device_id) DO NOTHING`

	result, err := r.db.GetDB().NamedExecContext(ctx, query, sub)
	if err != nil {
		return false, errors.NewDatabaseError("failed to store push subscription", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows > 0, nil
}

func (r *PushSubscriptionRepo) FindByDevice(ctx context.Context, deviceID string) ([]*models.PushSubscription, error) {
	subs := []*models.PushSubscription{}
	query := `SELECT * FROM push_subscriptions WHERE device_id = $1`

	err := r.db.GetDB().SelectContext(ctx, &subs, query, deviceID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to find push subscriptions", err)
	}
	return subs, nil
}

func (r *PushSubscriptionRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	query := `DELETE FROM push_subscriptions WHERE device_id = $1`
	if _, err := r.db.GetDB().ExecContext(ctx, query, deviceID); err != nil {
		return errors.NewDatabaseError("failed to delete push subscription", err)
	}
	return nil
}
