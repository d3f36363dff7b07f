package resources

import (
	"encoding/json"
	"net/http"

	"github.com/espview/hub/api/middleware"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/hubservice"
	nuts "github.com/vaudience/go-nuts"
)

// AuthHandlers encapsulates signup, login and profile handlers
type AuthHandlers struct {
	hubservice *hubservice.HubService
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

// @Summary Register a new account
// @Description Create an account bound to a unique device ID
// @Tags auth
// @Accept json
// @Produce json
// @Param account body signupRequest true "Account details"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /auth/signup [post]
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	if _, err := h.hubservice.Auth.Signup(r.Context(), req.Name, req.Email, req.Password, req.DeviceID); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "user created successfully"})
}

// @Summary Log in
// @Description Check credentials and issue a JWT carrying the device claim
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.APIError
// @Router /auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	token, err := h.hubservice.Auth.Login(r.Context(), req.Email, req.Password, req.DeviceID)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"message": "login successful",
	})
}

// @Summary Current user profile
// @Description Return the profile behind the presented token
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} errors.APIError
// @Router /auth/user [get]
// @Security BearerAuth
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no token claims found", nil).WithRequestID(requestID))
		return
	}

	user, err := h.hubservice.Auth.User(r.Context(), claims)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"name":     user.Name,
		"email":    user.Email,
		"deviceId": user.DeviceID,
	})
}

// respondWithAPIError keeps service-layer APIErrors intact and wraps
// anything else as internal.
func respondWithAPIError(w http.ResponseWriter, err error, requestID string) {
	if apiErr, ok := err.(*errors.APIError); ok {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}
	respondWithError(w, errors.NewInternalError("unexpected error", err).WithRequestID(requestID))
}
