// FilePath: internal/repository/postgres/postgres.user.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/models"
)

type UserRepo struct {
	PostgresBaseRepo
}

func NewUserRepository(db database.DB) *UserRepo {
	repo := &PostgresBaseRepo{db: db}
	return &UserRepo{PostgresBaseRepo: *repo}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, name, email, password_hash, device_id, created_at
		) VALUES (
			:id, :name, :email, :password_hash, :device_id, :created_at
		)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, user)
	if err != nil {
		return errors.NewDatabaseError("failed to create user", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByDeviceID(ctx context.Context, deviceID string) (*models.User, error) {
	return r.getBy(ctx, `SELECT * FROM users WHERE device_id = $1`, deviceID)
}

func (r *UserRepo) getBy(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.GetDB().GetContext(ctx, user, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user", err)
	}
	return user, nil
}
