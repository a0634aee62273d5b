package check_availability

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

const (
	msgInvalidResourceID = "некорректный ID ресурса"
	msgInvalidServiceID  = "некорректный ID услуги"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/resources/{resourceId}/availability
// Специалист: serviceId, date (YYYY-MM-DD). Номер: checkIn, checkOut (YYYY-MM-DD).
// Публичный endpoint - без авторизации
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, err := strconv.ParseInt(mux.Vars(r)["resourceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /resources/{id}/availability - Invalid resource ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	query := r.URL.Query()
	req := &models.CheckAvailabilityRequest{
		ResourceID:   resourceID,
		Date:         query.Get("date"),
		CheckInDate:  query.Get("checkIn"),
		CheckOutDate: query.Get("checkOut"),
	}

	if serviceIDStr := query.Get("serviceId"); serviceIDStr != "" {
		req.ServiceID, err = strconv.ParseInt(serviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /resources/{id}/availability - Invalid service ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceID)
			return
		}
	}

	result, err := h.service.CheckAvailability(r.Context(), req)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /resources/{id}/availability - Rejected: resource_id=%d, error=%v", resourceID, err)
			return
		}
		h.logger.Error("GET /resources/{id}/availability - Failed to check availability: resource_id=%d, error=%v",
			resourceID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /resources/{id}/availability - OK: resource_id=%d, slots=%d", resourceID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
