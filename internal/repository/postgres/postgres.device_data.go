// FilePath: internal/repository/postgres/postgres.device_data.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/models"
)

type DeviceDataRepo struct {
	PostgresBaseRepo
}

func NewDeviceDataRepository(db database.DB) *DeviceDataRepo {
	repo := &PostgresBaseRepo{db: db}
	return &DeviceDataRepo{PostgresBaseRepo: *repo}
}

func (r *DeviceDataRepo) Insert(ctx context.Context, data *models.DeviceData) error {
	query := `
		INSERT INTO device_data (
			id, device_id, kind, image, analog_value, mime_type, timestamp
		) VALUES (
			:id, :device_id, :kind, :image, :analog_value, :mime_type, :timestamp
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, data)
	if err != nil {
		return errors.NewDatabaseError("failed to insert device data", err)
	}
	return nil
}

func (r *DeviceDataRepo) ListImagesByDevice(ctx context.Context, deviceID string, limit int) ([]*models.DeviceData, error) {
	records := []*models.DeviceData{}
	query := `
		SELECT * FROM device_data
		WHERE device_id = $1 AND kind = $2
		ORDER BY timestamp DESC
		LIMIT $3`

	err := r.db.GetDB().SelectContext(ctx, &records, query, deviceID, models.DataKindImage, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list device images", err)
	}
	return records, nil
}

func (r *DeviceDataRepo) LatestImageByDevice(ctx context.Context, deviceID string) (*models.DeviceData, error) {
	return r.latestByKind(ctx, deviceID, models.DataKindImage)
}

func (r *DeviceDataRepo) LatestAnalogByDevice(ctx context.Context, deviceID string) (*models.DeviceData, error) {
	return r.latestByKind(ctx, deviceID, models.DataKindAnalog)
}

func (r *DeviceDataRepo) latestByKind(ctx context.Context, deviceID, kind string) (*models.DeviceData, error) {
	record := &models.DeviceData{}
	query := `
		SELECT * FROM device_data
		WHERE device_id = $1 AND kind = $2
		ORDER BY timestamp DESC
		LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, record, query, deviceID, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no device data found", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest device data", err)
	}
	return record, nil
}

func (r *DeviceDataRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM device_data WHERE timestamp < $1`
	result, err := r.db.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, errors.NewDatabaseError("failed to delete old device data", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabaseError("failed to get rows affected", err)
	}
	return rows, nil
}
