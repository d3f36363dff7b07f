// FilePath: api/resources/api.resource.push.go
package resources

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/hubservice"
	"github.com/espview/hub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// PushHandlers manages Web Push subscriptions and manual notifications
type PushHandlers struct {
	hubservice *hubservice.HubService
}

type pushSubscribeRequest struct {
	DeviceID string `json:"deviceId"`
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type pushNotifyRequest struct {
	DeviceID string `json:"deviceId"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// @Summary Register a push subscription
// @Description Store a Web Push subscription for a device; idempotent, the first subscription per device wins
// @Tags push
// @Accept json
// @Produce json
// @Param subscription body pushSubscribeRequest true "Push subscription"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /push/subscribe [post]
func (h *PushHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req pushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.DeviceID == "" || req.Endpoint == "" {
		respondWithError(w, errors.NewValidationError("deviceId and endpoint are required", nil).WithRequestID(requestID))
		return
	}

	sub := &models.PushSubscription{
		DeviceID:  req.DeviceID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		CreatedAt: time.Now().UTC(),
	}

	created, err := h.hubservice.PushSubs.Upsert(r.Context(), sub)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	if !created {
		nuts.L.Infof("[Push] Device %s already has a subscription, keeping the existing one", req.DeviceID)
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "subscription already exists"})
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "subscription stored"})
}

// @Summary Send a push notification
// @Description Fire-and-forget push to the device's registered endpoint(s)
// @Tags push
// @Accept json
// @Produce json
// @Param notification body pushNotifyRequest true "Notification"
// @Success 202 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 503 {object} errors.APIError
// @Router /push/notify [post]
func (h *PushHandlers) Notify(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var req pushNotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.DeviceID == "" {
		respondWithError(w, errors.NewValidationError("deviceId is required", nil).WithRequestID(requestID))
		return
	}

	if !h.hubservice.Dispatcher.PushEnabled() {
		respondWithError(w, errors.NewUnavailableError("web push is not configured", nil).WithRequestID(requestID))
		return
	}

	h.hubservice.Dispatcher.NotifyDevice(r.Context(), req.DeviceID, models.PushMessage{
		Title:   req.Title,
		Message: req.Message,
	})

	// Delivery is best effort; accepted only means the send was kicked off.
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "notification dispatched"})
}
