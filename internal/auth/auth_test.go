package auth

import (
	"context"
	"testing"
	"time"

	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/database"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	users map[string]*models.User // by ID
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (r *memoryUserRepo) BeginTx(ctx context.Context) (database.Transaction, error) {
	return nil, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.NewNotFoundError("user not found", nil)
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, errors.NewNotFoundError("user not found", nil)
}

func (r *memoryUserRepo) GetByDeviceID(ctx context.Context, deviceID string) (*models.User, error) {
	for _, user := range r.users {
		if user.DeviceID == deviceID {
			return user, nil
		}
	}
	return nil, errors.NewNotFoundError("user not found", nil)
}

func newTestService() (*Service, *memoryUserRepo) {
	repo := newMemoryUserRepo()
	svc := NewService(repo, config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: 4, // keep the test fast
	})
	return svc, repo
}

func TestSignupAndLoginRoundtrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", user.PasswordHash, "password must be stored hashed")

	token, err := svc.Login(ctx, "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "D1", claims.Device)
	assert.Equal(t, user.ID, claims.Subject)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Eve", "ada@example.com", "other", "D2")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestSignupRejectsDuplicateDevice(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "Eve", "eve@example.com", "other", "D1")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong", "D1")
	require.Error(t, err)
}

func TestLoginRejectsDeviceMismatch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "hunter2", "D9")
	require.Error(t, err)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ada@example.com", "hunter2", "D1")
	require.NoError(t, err)

	_, err = svc.Verify(token + "x")
	require.Error(t, err)

	other := NewService(newMemoryUserRepo(), config.AuthConfig{JWTSecret: "different", TokenTTL: time.Hour, BcryptCost: 4})
	_, err = other.Verify(token)
	require.Error(t, err)
}
