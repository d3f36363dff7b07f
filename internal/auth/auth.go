// FilePath: internal/auth/auth.go
package auth

import (
	"context"
	"time"

	"github.com/espview/hub/internal/config"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/models"
	"github.com/espview/hub/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	nuts "github.com/vaudience/go-nuts"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims issued on login. Device carries the device ID
// bound to the account so data endpoints can scope queries by token alone.
type Claims struct {
	Email  string `json:"email"`
	Device string `json:"device"`
	jwt.RegisteredClaims
}

// Service implements the credential-check flow: signup, login with JWT
// issuance, and token verification.
type Service struct {
	users      repository.UserRepository
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

// NewService creates the auth service.
func NewService(users repository.UserRepository, cfg config.AuthConfig) *Service {
	return &Service{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenTTL,
		bcryptCost: cfg.BcryptCost,
	}
}

// Signup registers a new account. Email and device ID must both be unused.
func (s *Service) Signup(ctx context.Context, name, email, password, deviceID string) (*models.User, error) {
	if email == "" || password == "" || deviceID == "" {
		return nil, errors.NewValidationError("email, password and deviceId are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errors.NewValidationError("user already exists", nil)
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	if _, err := s.users.GetByDeviceID(ctx, deviceID); err == nil {
		return nil, errors.NewValidationError("device ID already in use", nil)
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		ID:           nuts.NID("usr", 12),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		DeviceID:     deviceID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	nuts.L.Infof("[Auth] User %s registered for device %s", user.ID, deviceID)
	return user, nil
}

// Login checks credentials and the account's device binding, then issues a
// signed token.
func (s *Service) Login(ctx context.Context, email, password, deviceID string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return "", errors.NewAuthError("user not found", err)
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errors.NewAuthError("invalid credentials", err)
	}

	if user.DeviceID != deviceID {
		return "", errors.NewAuthError("device ID mismatch", nil)
	}

	now := time.Now()
	claims := Claims{
		Email:  user.Email,
		Device: user.DeviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.NewInternalError("failed to sign token", err)
	}
	return token, nil
}

// Verify parses and validates a token string.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAuthError("unexpected signing method", nil)
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewAuthError("invalid or expired token", err)
	}
	return claims, nil
}

// User loads the account behind a verified token.
func (s *Service) User(ctx context.Context, claims *Claims) (*models.User, error) {
	return s.users.GetByID(ctx, claims.Subject)
}
