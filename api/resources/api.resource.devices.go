// FilePath: api/resources/api.resource.devices.go
package resources

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/hubservice"
	"github.com/espview/hub/internal/models"
	"github.com/gorilla/mux"
	nuts "github.com/vaudience/go-nuts"
)

// DeviceHandlers encapsulates the telemetry ingestion and state read
// handlers
type DeviceHandlers struct {
	hubservice     *hubservice.HubService
	MaxUploadBytes int64
}

type analogRequest struct {
	// Pointer so a missing value is distinguishable from zero.
	Value *float64 `json:"value"`
}

// @Summary Upload a camera frame
// @Description Accept a raw JPEG body, compress it, persist it and fan the update out
// @Tags devices
// @Accept image/jpeg
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 201 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Failure 500 {object} errors.APIError
// @Router /devices/{deviceId}/image [post]
func (h *DeviceHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["deviceId"]
	requestID := nuts.NID("req", 12)

	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, errors.NewValidationError("image exceeds maximum upload size", err).WithRequestID(requestID))
		return
	}
	if len(raw) == 0 {
		respondWithError(w, errors.NewValidationError("no image data received", nil).WithRequestID(requestID))
		return
	}

	compressed, err := h.hubservice.Compressor.Compress(raw)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	record := &models.DeviceData{
		ID:        nuts.NID("dd", 12),
		DeviceID:  deviceID,
		Kind:      models.DataKindImage,
		Image:     compressed,
		MimeType:  "image/jpeg",
		Timestamp: time.Now().UTC(),
	}
	if err := h.hubservice.Data.Insert(r.Context(), record); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	if h.hubservice.Images != nil {
		h.hubservice.Images.SetLatest(r.Context(), deviceID, compressed)
	}

	ref := fmt.Sprintf("/api/v1/devices/%s/image/latest", deviceID)
	h.hubservice.Dispatcher.Dispatch(r.Context(), models.ImageUpdate(deviceID, ref))

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "image received and stored"})
}

// @Summary Upload an analog sample
// @Description Store the latest analog value for a device and fan the update out
// @Tags devices
// @Accept json
// @Produce json
// @Param deviceId path string true "Device ID"
// @Param sample body analogRequest true "Analog sample"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.APIError
// @Router /devices/{deviceId}/analog [post]
func (h *DeviceHandlers) UploadAnalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["deviceId"]
	requestID := nuts.NID("req", 12)

	var req analogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}
	if req.Value == nil {
		respondWithError(w, errors.NewValidationError("no analog value received", nil).WithRequestID(requestID))
		return
	}

	record := &models.DeviceData{
		ID:          nuts.NID("dd", 12),
		DeviceID:    deviceID,
		Kind:        models.DataKindAnalog,
		AnalogValue: req.Value,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.hubservice.Data.Insert(r.Context(), record); err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}

	h.hubservice.Dispatcher.Dispatch(r.Context(), models.AnalogUpdate(deviceID, *req.Value))

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "analog value updated"})
}

// @Summary Latest analog value
// @Description Return the last known analog value, or 404 when the device never reported one
// @Tags devices
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.APIError
// @Router /devices/{deviceId}/analog [get]
func (h *DeviceHandlers) GetAnalog(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["deviceId"]
	requestID := nuts.NID("req", 12)

	value, ok := h.hubservice.State.Analog(deviceID)
	if !ok {
		// Warm the in-memory snapshot from the durable copy after a restart.
		record, err := h.hubservice.Data.LatestAnalogByDevice(r.Context(), deviceID)
		if err != nil {
			if errors.IsNotFound(err) {
				respondWithError(w, errors.NewNotFoundError("analog value not available", err).WithRequestID(requestID))
				return
			}
			respondWithAPIError(w, err, requestID)
			return
		}
		if record.AnalogValue == nil {
			respondWithError(w, errors.NewNotFoundError("analog value not available", nil).WithRequestID(requestID))
			return
		}
		h.hubservice.State.SetAnalog(deviceID, *record.AnalogValue)
		value = *record.AnalogValue
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"deviceId": deviceID,
		"value":    value,
	})
}

// @Summary Device snapshot
// @Description Return the full in-memory state snapshot for a device
// @Tags devices
// @Produce json
// @Param deviceId path string true "Device ID"
// @Success 200 {object} models.DeviceState
// @Failure 404 {object} errors.APIError
// @Router /devices/{deviceId}/state [get]
func (h *DeviceHandlers) GetState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["deviceId"]
	requestID := nuts.NID("req", 12)

	snapshot, ok := h.hubservice.State.Get(deviceID)
	if !ok {
		respondWithError(w, errors.NewNotFoundError("device has never reported", nil).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}

// @Summary Latest camera frame
// @Description Serve the newest stored image for a device, cache first
// @Tags devices
// @Produce image/jpeg
// @Param deviceId path string true "Device ID"
// @Success 200 {file} file
// @Failure 404 {object} errors.APIError
// @Router /devices/{deviceId}/image/latest [get]
func (h *DeviceHandlers) LatestImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deviceID := vars["deviceId"]
	requestID := nuts.NID("req", 12)

	if h.hubservice.Images != nil {
		if data, ok := h.hubservice.Images.Latest(r.Context(), deviceID); ok {
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(data)
			return
		}
	}

	record, err := h.hubservice.Data.LatestImageByDevice(r.Context(), deviceID)
	if err != nil {
		if errors.IsNotFound(err) {
			respondWithError(w, errors.NewNotFoundError("no image uploaded yet", err).WithRequestID(requestID))
			return
		}
		respondWithAPIError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", record.MimeType)
	w.Write(record.Image)
}
