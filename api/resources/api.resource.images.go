// FilePath: api/resources/api.resource.images.go
package resources

import (
	"net/http"

	"github.com/espview/hub/api/middleware"
	"github.com/espview/hub/internal/errors"
	"github.com/espview/hub/internal/hubservice"
	"github.com/espview/hub/internal/models"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// ImageHandlers serves the per-device image history. Routes are JWT
// protected; the device is taken from the token's device claim, never from
// the request.
type ImageHandlers struct {
	hubservice *hubservice.HubService
}

var queryDecoder = schema.NewDecoder()

type imageListQuery struct {
	Limit int `schema:"limit"`
}

// @Summary Image history
// @Description List stored images for the token's device, newest first
// @Tags images
// @Produce json
// @Param limit query int false "Maximum records to return"
// @Success 200 {array} models.DeviceImage
// @Failure 404 {object} errors.APIError
// @Router /images [get]
// @Security BearerAuth
func (h *ImageHandlers) ListImages(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no token claims found", nil).WithRequestID(requestID))
		return
	}

	query := imageListQuery{Limit: 50}
	if err := queryDecoder.Decode(&query, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewValidationError("invalid query parameters", err).WithRequestID(requestID))
		return
	}
	if query.Limit <= 0 || query.Limit > 100 {
		query.Limit = 50
	}

	records, err := h.hubservice.Data.ListImagesByDevice(r.Context(), claims.Device, query.Limit)
	if err != nil {
		respondWithAPIError(w, err, requestID)
		return
	}
	if len(records) == 0 {
		respondWithError(w, errors.NewNotFoundError("no images found for this device", nil).WithRequestID(requestID))
		return
	}

	images := make([]models.DeviceImage, 0, len(records))
	for _, record := range records {
		images = append(images, models.DeviceImage{
			Image:     record.Image,
			Timestamp: record.Timestamp,
		})
	}

	respondWithJSON(w, http.StatusOK, images)
}

// @Summary Latest image record
// @Description Return the newest stored image for the token's device
// @Tags images
// @Produce json
// @Success 200 {object} models.DeviceImage
// @Failure 404 {object} errors.APIError
// @Router /images/latest [get]
// @Security BearerAuth
func (h *ImageHandlers) LatestImage(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		respondWithError(w, errors.NewAuthError("no token claims found", nil).WithRequestID(requestID))
		return
	}

	record, err := h.hubservice.Data.LatestImageByDevice(r.Context(), claims.Device)
	if err != nil {
		if errors.IsNotFound(err) {
			respondWithError(w, errors.NewNotFoundError("no images found", err).WithRequestID(requestID))
			return
		}
		respondWithAPIError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, models.DeviceImage{
		Image:     record.Image,
		Timestamp: record.Timestamp,
	})
}
